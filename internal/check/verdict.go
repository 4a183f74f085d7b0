// Package check decides whether one converter run satisfies the expected
// outcome of its suite.
package check

// ImagesSame is the exact stdout the comparator prints for equivalent images.
const ImagesSame = "Images are same"

// Expected is the process result shape a suite requires from the converter.
type Expected struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

var (
	// ExpectSuccess is the shape for the ok and twice suites.
	ExpectSuccess = Expected{ExitCode: 0}
	// ExpectFailure is the shape for the not_ok suite. Stderr is only
	// required to be non-empty.
	ExpectFailure = Expected{ExitCode: 1}
)

// Verdict is the result of validating one case. Reason names the first
// check that failed; Details carries supporting lines.
type Verdict struct {
	Passed  bool
	Reason  string
	Details []string
}

func pass() Verdict {
	return Verdict{Passed: true}
}

func fail(reason string, details ...string) Verdict {
	return Verdict{Reason: reason, Details: details}
}
