package suite

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"negcheck/internal/proc"
	"negcheck/internal/testhelpers"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const (
	copyConverter = `case "$2" in
*/not_ok/*) echo "Error: invalid BMP header" >&2; exit 1 ;;
esac
cp "$2" "$3"
`
	// Appends a byte to every output, so nothing compares equal.
	driftConverter = `case "$2" in
*/not_ok/*) echo "Error: invalid BMP header" >&2; exit 1 ;;
esac
cp "$2" "$3"
printf 'X' >> "$3"
`
	// Fails with an error but leaves an output file behind.
	leakyConverter = `cp "$2" "$3"
case "$2" in
*/not_ok/*) echo "Error: invalid BMP header" >&2; exit 1 ;;
esac
`
	comparator = `if cmp -s "$1" "$2"; then
  echo "Images are same"
  exit 0
fi
echo "Images differ" >&2
exit 2
`
)

type fixture struct {
	root       string
	converter  string
	comparator string
	quarantine string
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

func newFixture(t *testing.T, converterBody string) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	base := t.TempDir()
	f := &fixture{
		root:       filepath.Join(base, "data"),
		converter:  writeScript(t, base, "converter.sh", converterBody),
		comparator: writeScript(t, base, "comparer.sh", comparator),
		quarantine: filepath.Join(base, "failed_outputs"),
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	}

	gradient := mkdir(t, f.root, NameOK, "gradient")
	testhelpers.WriteBitmap(t, gradient, InputImage, testhelpers.RGB24())
	testhelpers.WriteBitmap(t, gradient, ReferenceImage, testhelpers.RGB24())

	corrupt := mkdir(t, f.root, NameNotOK, "corrupt_header")
	if err := os.WriteFile(filepath.Join(corrupt, InputImage), []byte("XX"), 0o644); err != nil {
		t.Fatalf("write corrupt input: %v", err)
	}

	checker := mkdir(t, f.root, NameTwice, "checker")
	testhelpers.WriteBitmap(t, checker, InputImage, testhelpers.Gray8())

	return f
}

func (f *fixture) options(t *testing.T) Options {
	t.Helper()
	q := Quarantine{Dir: f.quarantine}
	if err := q.Prepare(); err != nil {
		t.Fatalf("prepare quarantine: %v", err)
	}
	return Options{
		Converter:      f.converter,
		ConverterFlags: []string{"--silent"},
		Comparator:     f.comparator,
		Runner:         proc.Exec{Timeout: 10 * time.Second},
		Quarantine:     q,
		Reporter:       NewReporter(f.stdout, f.stderr),
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir
}

func assertNoTransientOutputs(t *testing.T, root string) {
	t.Helper()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name := d.Name(); name == OutputImage || name == OutputTwiceImage {
			t.Errorf("transient output left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func quarantined(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read quarantine: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRunAllPasses(t *testing.T) {
	f := newFixture(t, copyConverter)

	summary, err := RunAll(context.Background(), f.root, f.options(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Summary{Suites: []Result{
		{Suite: NameOK, Cases: 1},
		{Suite: NameNotOK, Cases: 1},
		{Suite: NameTwice, Cases: 1},
	}}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	for _, line := range []string{"OK gradient", "OK corrupt_header", "OK checker"} {
		if !strings.Contains(f.stdout.String(), line) {
			t.Fatalf("stdout missing %q:\n%s", line, f.stdout.String())
		}
	}
	if f.stderr.Len() != 0 {
		t.Fatalf("unexpected stderr:\n%s", f.stderr.String())
	}
	assertNoTransientOutputs(t, f.root)
	if names := quarantined(t, f.quarantine); len(names) != 0 {
		t.Fatalf("unexpected quarantine contents: %v", names)
	}
}

func TestRunAllQuarantinesImageMismatches(t *testing.T) {
	f := newFixture(t, driftConverter)

	summary, err := RunAll(context.Background(), f.root, f.options(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 2 {
		t.Fatalf("failed = %d, want 2", summary.Failed)
	}

	stderr := f.stderr.String()
	for _, want := range []string{
		"FAILED gradient: result image is incorrect",
		"FAILED checker: result image is incorrect",
		"  Comparer return code: 2",
		"  Image 1 original Palette: 00 00 00 00 ff ff ff 00",
		"Saved twice failed output to " + filepath.Join(f.quarantine, "checker_twice_output.bmp"),
		"Saved failed output to " + filepath.Join(f.quarantine, "gradient_output.bmp"),
	} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr missing %q:\n%s", want, stderr)
		}
	}
	if !strings.Contains(f.stdout.String(), "OK corrupt_header") {
		t.Fatalf("stdout missing not_ok pass:\n%s", f.stdout.String())
	}

	want := []string{"checker_twice_output.bmp", "gradient_output.bmp"}
	if diff := cmp.Diff(want, quarantined(t, f.quarantine)); diff != "" {
		t.Fatalf("quarantine mismatch (-want +got):\n%s", diff)
	}
	assertNoTransientOutputs(t, f.root)
}

func TestRunAllQuarantinesUnexpectedOutput(t *testing.T) {
	f := newFixture(t, leakyConverter)

	summary, err := RunAll(context.Background(), f.root, f.options(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("failed = %d, want 1", summary.Failed)
	}
	if !strings.Contains(f.stderr.String(), "FAILED corrupt_header: output file created in incorrect scenario") {
		t.Fatalf("unexpected stderr:\n%s", f.stderr.String())
	}
	want := []string{"corrupt_header_unexpected_output.bmp"}
	if diff := cmp.Diff(want, quarantined(t, f.quarantine)); diff != "" {
		t.Fatalf("quarantine mismatch (-want +got):\n%s", diff)
	}
	assertNoTransientOutputs(t, f.root)
}

func TestRunAllMissingSuiteDir(t *testing.T) {
	f := newFixture(t, copyConverter)
	if err := os.RemoveAll(filepath.Join(f.root, NameTwice)); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, err := RunAll(context.Background(), f.root, f.options(t))
	if !errors.Is(err, ErrSuiteDir) {
		t.Fatalf("expected ErrSuiteDir, got %v", err)
	}
}

func TestRunAllReportsProgress(t *testing.T) {
	f := newFixture(t, copyConverter)
	updates := make(chan ProgressUpdate, 64)
	opts := f.options(t)
	opts.Updates = updates

	if _, err := RunAll(context.Background(), f.root, opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	close(updates)

	total, done := 0, 0
	for u := range updates {
		total += u.TotalDelta
		done += u.DoneDelta
	}
	if total != 3 || done != 3 {
		t.Fatalf("total=%d done=%d, want 3/3", total, done)
	}
}

func TestRunSuiteOrdersCasesAndSkipsFiles(t *testing.T) {
	f := newFixture(t, copyConverter)
	for _, name := range []string{"b_case", "a_case"} {
		dir := mkdir(t, f.root, NameNotOK, name)
		if err := os.WriteFile(filepath.Join(dir, InputImage), []byte("XX"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(f.root, NameNotOK, "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := runSuite(context.Background(), suite{name: NameNotOK, run: runNotOKCase}, filepath.Join(f.root, NameNotOK), f.options(t))
	if err != nil {
		t.Fatalf("run suite: %v", err)
	}
	if res.Cases != 3 || res.Failed != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := "OK a_case\nOK b_case\nOK corrupt_header\n"
	if got := f.stdout.String(); got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}
