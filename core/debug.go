package core

import (
	"log"
	"os"
	"sync/atomic"
)

// DebugEnv enables diagnostic trace lines about detection, patching, and
// injection decisions. It only changes what gets logged, never behavior.
const DebugEnv = "AGENTIC_LEARNING_DEBUG"

var debugEnabled atomic.Bool

func init() {
	debugEnabled.Store(os.Getenv(DebugEnv) != "")
}

// Debugf writes a diagnostic line when AGENTIC_LEARNING_DEBUG is set.
func Debugf(format string, args ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf(format, args...)
}

// SetDebug overrides the environment toggle. Intended for tests.
func SetDebug(on bool) {
	debugEnabled.Store(on)
}
