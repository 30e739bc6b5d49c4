// Package exitcodes defines the standard exit codes used by backstop.
package exitcodes

// Exit code constants used by backstop
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the selected test run (or all verification checks) passed
// * TestFailure (1): Used when one or more tests or checks fail
// * RuntimeErr (2): Used for runtime errors such as bad configuration or commands that cannot be launched
// * Interrupted (130): Used when the user interrupts a run with SIGINT
const (
	Success     = 0   // Selected run passed
	TestFailure = 1   // Test or check failures
	RuntimeErr  = 2   // Runtime errors, missing executables
	Interrupted = 130 // User interrupt during execution
)
