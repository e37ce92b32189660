// Package exitcodes defines the standard exit codes used by flakewrap.
package exitcodes

// Exit code constants used by flakewrap
// These constants define the exit codes that the tool uses to report the
// outcome of a reconciliation session:
//
// * Success (0): Used when the run passes, including flaky passes reached
//   only after re-running failed cases
// * InternalErr (1): Used for unexpected errors of flakewrap itself,
//   such as configuration problems or inconsistent report contents
// * TestFailure (2): Used when at least one test case still fails after
//   exhausting its retry budget
// * Crash (3): Used when the test binary terminated abnormally, either on
//   both full-suite attempts or during a per-case retry
const (
	Success     = 0 // Overall pass, possibly flaky
	InternalErr = 1 // Unexpected error of the tool itself
	TestFailure = 2 // A test case failed even after the re-runs
	Crash       = 3 // The test binary crashed
)
