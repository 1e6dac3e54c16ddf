package features

import "testing"

// Require skips the test when the named feature is not enabled in the set.
// An unresolved __ASK__ set skips everything.
func Require(tb testing.TB, s Set, name string) {
	tb.Helper()
	if !s.Enabled(name) {
		tb.Skipf("feature %q is not enabled for this deployment", name)
	}
}
