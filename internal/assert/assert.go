// Package assert reports broken internal invariants. Builds with the debug
// tag panic; regular builds log the violation and let the caller degrade.
package assert

import (
	"fmt"

	"github.com/julianstephens/waterme/internal/logger"
)

// That reports whether cond holds, flagging a violation when it does not.
func That(cond bool, msg string, keyvals ...interface{}) bool {
	if !cond {
		fail(msg, keyvals...)
	}
	return cond
}

// Fail flags a violation unconditionally.
func Fail(msg string, keyvals ...interface{}) {
	fail(msg, keyvals...)
}

func fail(msg string, keyvals ...interface{}) {
	logger.Error("invariant violated: "+msg, keyvals...)
	if panicOnFailure {
		panic(fmt.Sprintf("invariant violated: %s %v", msg, keyvals))
	}
}
