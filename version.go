package vdiff

import (
	"encoding/hex"
	"runtime/debug"
	"sync"

	"golang.org/x/crypto/blake2s"
)

// Version is the engine's release version, overridable at link time.
var Version = "dev"

var codebaseOnce = sync.OnceValue(computeCodebaseHash)

// CodebaseHash returns a digest identifying the running engine build.
// Hash outputs embed it so stored digests can be tied back to the code
// that produced them.
func CodebaseHash() string {
	return codebaseOnce()
}

func computeCodebaseHash() string {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(Version))

	if info, ok := debug.ReadBuildInfo(); ok {
		h.Write([]byte(info.Main.Path))
		h.Write([]byte(info.Main.Version))
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" || setting.Key == "vcs.modified" {
				h.Write([]byte(setting.Key))
				h.Write([]byte(setting.Value))
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
