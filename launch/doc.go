// Package launch re-invokes the engine inside an external host process.
//
// Some hosts only expose their document model from within their own
// process. The wrapper starts the host binary with the engine's CLI flags
// forwarded, then extracts the first JSON object from the host's stdout,
// which is typically polluted with the host's own startup chatter.
package launch
