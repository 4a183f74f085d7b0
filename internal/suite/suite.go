package suite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"negcheck/internal/check"
	"negcheck/internal/logger"
	"negcheck/internal/proc"
)

// ErrSuiteDir marks a suite directory that could not be listed.
var ErrSuiteDir = errors.New("unreadable suite directory")

type caseRunner func(ctx context.Context, dir, name string, opts Options) bool

type suite struct {
	name string
	run  caseRunner
}

var suites = []suite{
	{name: NameOK, run: runOKCase},
	{name: NameNotOK, run: runNotOKCase},
	{name: NameTwice, run: runTwiceCase},
}

// runSuite processes the cases under dir one at a time in name order.
func runSuite(ctx context.Context, s suite, dir string, opts Options) (Result, error) {
	res := Result{Suite: s.name}
	ctx = logger.WithSuite(ctx, s.name)

	cases, err := listCases(dir)
	if err != nil {
		return res, fmt.Errorf("%w %s: %v", ErrSuiteDir, dir, err)
	}
	opts.progress(ProgressUpdate{Suite: s.name, TotalDelta: len(cases)})
	logger.Info(ctx, "suite started", zap.Int("cases", len(cases)))

	for _, name := range cases {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		passed := s.run(logger.WithCase(ctx, name), filepath.Join(dir, name), name, opts)
		res.Cases++
		update := ProgressUpdate{Suite: s.name, DoneDelta: 1}
		if !passed {
			res.Failed++
			update.FailedDelta = 1
		}
		opts.progress(update)
	}

	logger.Info(ctx, "suite finished", zap.Int("cases", res.Cases), zap.Int("failed", res.Failed))
	return res, nil
}

// listCases returns the names of the immediate subdirectories of dir,
// sorted lexicographically.
func listCases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func runOKCase(ctx context.Context, dir, name string, opts Options) bool {
	input := filepath.Join(dir, InputImage)
	output := filepath.Join(dir, OutputImage)
	reference := filepath.Join(dir, ReferenceImage)
	defer cleanup(ctx, output)

	actual := convert(ctx, opts, input, output)
	verdict := opts.validator().OK(ctx, check.OKCase{
		Expected: check.ExpectSuccess,
		Actual:   actual,
		Input:    input,
		Output:   output,
		Compare:  [2]string{output, reference},
	})

	var notes []string
	if !verdict.Passed {
		notes = opts.keep(ctx, output, name+"_output.bmp", "Saved failed output to")
	}
	opts.Reporter.Case(name, verdict, notes...)
	return verdict.Passed
}

func runNotOKCase(ctx context.Context, dir, name string, opts Options) bool {
	input := filepath.Join(dir, InputImage)
	output := filepath.Join(dir, OutputImage)
	defer cleanup(ctx, output)

	actual := convert(ctx, opts, input, output)
	verdict := check.NotOK(check.ExpectFailure, actual, output)

	var notes []string
	if !verdict.Passed {
		notes = opts.keep(ctx, output, name+"_unexpected_output.bmp", "Saved unexpected output to")
	}
	opts.Reporter.Case(name, verdict, notes...)
	return verdict.Passed
}

func runTwiceCase(ctx context.Context, dir, name string, opts Options) bool {
	input := filepath.Join(dir, InputImage)
	output := filepath.Join(dir, OutputImage)
	twice := filepath.Join(dir, OutputTwiceImage)
	defer cleanup(ctx, output, twice)

	actual := convert(ctx, opts, input, output)
	// Only the first run's process result is validated.
	second := convert(ctx, opts, output, twice)
	if second.ExitCode != 0 {
		logger.Debug(ctx, "second conversion exited non-zero",
			zap.Int("exit_code", second.ExitCode), zap.String("stderr", second.Stderr))
	}

	verdict := opts.validator().OK(ctx, check.OKCase{
		Expected: check.ExpectSuccess,
		Actual:   actual,
		Input:    input,
		Output:   twice,
		Twice:    true,
		Compare:  [2]string{input, twice},
	})

	var notes []string
	if !verdict.Passed {
		notes = opts.keep(ctx, twice, name+"_twice_output.bmp", "Saved twice failed output to")
	}
	opts.Reporter.Case(name, verdict, notes...)
	return verdict.Passed
}

func (o Options) validator() check.Validator {
	return check.Validator{Runner: o.Runner, Comparator: o.Comparator}
}

// convert runs the converter once. A converter that cannot be started
// yields a result that fails the exit code check.
func convert(ctx context.Context, opts Options, input, output string) proc.Result {
	res, err := proc.Convert(ctx, opts.Runner, opts.Converter, opts.ConverterFlags, input, output)
	if err != nil {
		logger.Error(ctx, "converter did not run", zap.Error(err))
		return proc.Result{ExitCode: proc.UnknownExitCode, Stderr: err.Error()}
	}
	return res
}

// keep quarantines output and returns the note to print, if any.
func (o Options) keep(ctx context.Context, output, name, label string) []string {
	dest, moved, err := o.Quarantine.Keep(output, name)
	if err != nil {
		logger.Error(ctx, "quarantine failed", zap.Error(err))
		return []string{fmt.Sprintf("Could not save output: %v", err)}
	}
	if !moved {
		return nil
	}
	return []string{fmt.Sprintf("%s %s", label, dest)}
}

func cleanup(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if err := removeIfExists(path); err != nil {
			logger.Warn(ctx, "cleanup failed", zap.String("path", path), zap.Error(err))
		}
	}
}
