// Package runner contains the reconciliation engine that irons out flaky
// test failures before a final verdict is reported.
//
// The main components are:
//   - ReportParser: Reads the structured XML test log of one run and
//     extracts the identities of the failing test cases
//   - Executor: Spawns the wrapped test binary, either for a full-suite
//     run or for a single-case re-run, with timeout and crash detection
//   - Reconciler: Owns the outcome state machine: the crash-recovery
//     full run, the per-case retry loop with pass-threshold accounting,
//     and the final-attempt verbosity escalation
//   - RetryPolicy: Immutable retry configuration consumed by the
//     Reconciler, including the per-attempt escalation arguments
//
// Execution is strictly sequential: one subprocess is in flight at a
// time, so flaky-case diagnosis stays attributable and the wrapped
// binary's shared fixtures are never contended.
package runner
