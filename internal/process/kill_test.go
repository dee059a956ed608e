package process

// Notes:
// - Only harmless PIDs are exercised. Real kills are covered by the engine
//   browser tests, which close a launched Chrome.
// - PID 0 and negative PIDs would target this test's own process group and
//   are rejected before any syscall.

import "testing"

func TestKillProcessGroup_IgnoresInvalidPID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1, 999999999} {
		KillProcessGroup(pid)
	}
}
