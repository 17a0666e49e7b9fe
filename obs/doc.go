// Package obs wires tracing and metrics for the engine. Spans cover the
// three expensive operations (snapshot build, diff compute, file hash);
// everything else stays out of the trace.
package obs
