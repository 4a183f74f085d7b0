package suite

import (
	"negcheck/internal/proc"
)

// Suite directory names under the test-data root.
const (
	NameOK    = "ok"
	NameNotOK = "not_ok"
	NameTwice = "twice"
)

// File names inside a case directory.
const (
	InputImage       = "image.bmp"
	OutputImage      = "image_neg.bmp"
	ReferenceImage   = "image_neg_reference.bmp"
	OutputTwiceImage = "image_neg_twice.bmp"
)

// Options configures a run. Quarantine is the only place failing outputs
// are written to outside the case directories.
type Options struct {
	Converter      string
	ConverterFlags []string
	Comparator     string
	Runner         proc.Runner
	Quarantine     Quarantine
	Reporter       *Reporter
	Updates        chan<- ProgressUpdate
}

// Result is the tally for one suite.
type Result struct {
	Suite  string
	Cases  int
	Failed int
}

// Summary aggregates the three suites.
type Summary struct {
	Suites []Result
	Failed int
}

// ProgressUpdate reports incremental progress of one suite.
type ProgressUpdate struct {
	Suite       string
	TotalDelta  int
	DoneDelta   int
	FailedDelta int
}

func (o Options) progress(update ProgressUpdate) {
	if o.Updates != nil {
		o.Updates <- update
	}
}
