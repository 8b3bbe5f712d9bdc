package process

// Notes:
// - Only non-existent and non-positive PIDs are exercised. Real termination is
//   covered by the session integration tests; killing arbitrary PIDs from a
//   unit test is not safe.
// - PID 0 must be a no-op: on unix kill(-0) would target our own group.

import "testing"

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

func TestKillProcessGroup_NonPositivePID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1} {
		KillProcessGroup(pid)
	}
}
