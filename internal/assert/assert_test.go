//go:build !debug

package assert

import "testing"

func TestThat_ReleaseBuildDoesNotPanic(t *testing.T) {
	if !That(true, "holds") {
		t.Error("That(true) = false")
	}
	if That(false, "broken", "index", 7) {
		t.Error("That(false) = true")
	}
	Fail("explicit")
}
