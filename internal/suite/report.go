package suite

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"negcheck/internal/check"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// Reporter prints case results. Each case block is written under one lock
// so blocks from concurrent suites never interleave.
type Reporter struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewReporter constructs a Reporter. Passing lines go to stdout, failures
// and quarantine notes go to stderr.
func NewReporter(stdout, stderr io.Writer) *Reporter {
	return &Reporter{stdout: stdout, stderr: stderr}
}

// Case prints the verdict for one case followed by any notes.
func (r *Reporter) Case(name string, v check.Verdict, notes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Passed {
		fmt.Fprintf(r.stdout, "%s %s\n", green("OK"), name)
	} else {
		fmt.Fprintf(r.stderr, "%s %s: %s\n", red("FAILED"), name, v.Reason)
		for _, line := range v.Details {
			fmt.Fprintf(r.stderr, "  %s\n", line)
		}
	}
	for _, note := range notes {
		fmt.Fprintln(r.stderr, note)
	}
}

// Banner prints the aggregate result line.
func (r *Reporter) Banner(failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if failed > 0 {
		fmt.Fprintf(r.stdout, "%d tests %s\n\n", failed, red("FAILED"))
		return
	}
	fmt.Fprintf(r.stdout, "All tests %s\n\n", green("PASSED"))
}
