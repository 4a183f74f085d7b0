package check

import (
	"context"
	"fmt"
	"os"

	"negcheck/internal/proc"
)

// OKCase is one converter run that must succeed and produce an image the
// comparator accepts.
type OKCase struct {
	Expected Expected
	Actual   proc.Result

	// Input and Output are the converter's own paths; they are decoded for
	// diagnostics when the comparison fails.
	Input  string
	Output string
	Twice  bool

	// Compare holds the two images handed to the comparator.
	Compare [2]string
}

// Validator runs the comparator on behalf of OK validation.
type Validator struct {
	Runner     proc.Runner
	Comparator string
}

// OK checks exit code, stdout, stderr and then image equivalence, stopping
// at the first mismatch.
func (v Validator) OK(ctx context.Context, c OKCase) Verdict {
	if c.Expected.ExitCode != c.Actual.ExitCode {
		return fail(fmt.Sprintf("Return code %d != %d", c.Expected.ExitCode, c.Actual.ExitCode),
			fmt.Sprintf("stdout: '%s'", c.Actual.Stdout),
			fmt.Sprintf("stderr: '%s'", c.Actual.Stderr),
		)
	}
	if c.Expected.Stdout != c.Actual.Stdout {
		return fail("incorrect stdout",
			fmt.Sprintf("Expected stdout: '%s'", c.Expected.Stdout),
			fmt.Sprintf("Actual stdout: '%s'", c.Actual.Stdout),
		)
	}
	if c.Expected.Stderr != c.Actual.Stderr {
		return fail("incorrect stderr",
			fmt.Sprintf("Expected stderr: '%s'", c.Expected.Stderr),
			fmt.Sprintf("Actual stderr: '%s'", c.Actual.Stderr),
		)
	}

	var details []string
	cmp, err := v.Runner.Run(ctx, v.Comparator, c.Compare[0], c.Compare[1])
	switch {
	case err != nil:
		details = []string{fmt.Sprintf("Comparer did not run: %v", err)}
	case cmp.ExitCode == 0 && cmp.Stdout == ImagesSame:
		return pass()
	default:
		details = []string{
			fmt.Sprintf("Comparer return code: %d", cmp.ExitCode),
			fmt.Sprintf("Comparer stdout: '%s'", cmp.Stdout),
			fmt.Sprintf("Comparer stderr: '%s'", cmp.Stderr),
		}
	}
	diag := Diagnose(ctx, c.Input, c.Output, c.Twice)
	defer diag.Release()

	return fail("result image is incorrect", append(details, diag.Lines()...)...)
}

// NotOK checks that the converter failed cleanly: expected exit code and
// stdout, some error text, and no output file.
func NotOK(expected Expected, actual proc.Result, output string) Verdict {
	if expected.ExitCode != actual.ExitCode {
		return fail(fmt.Sprintf("Return code %d != %d, expected %d", expected.ExitCode, actual.ExitCode, expected.ExitCode),
			fmt.Sprintf("stdout: '%s'", actual.Stdout),
			fmt.Sprintf("stderr: '%s'", actual.Stderr),
		)
	}
	if expected.Stdout != actual.Stdout {
		return fail(fmt.Sprintf("incorrect stdout, expected '%s'", expected.Stdout),
			fmt.Sprintf("Actual stdout: '%s'", actual.Stdout),
		)
	}
	if actual.Stderr == "" {
		return fail("incorrect stderr (expected error message), got empty error")
	}
	if _, err := os.Stat(output); err == nil {
		return fail("output file created in incorrect scenario, output file was not expected")
	}
	return pass()
}
