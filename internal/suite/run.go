package suite

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// RunAll runs the ok, not_ok and twice suites under root concurrently and
// sums their failures. The suites touch disjoint case directories and
// suffix-distinct quarantine names, so they share nothing but the
// reporter. An unreadable suite directory cancels the others.
func RunAll(ctx context.Context, root string, opts Options) (Summary, error) {
	results := make([]Result, len(suites))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range suites {
		i, s := i, s
		g.Go(func() error {
			res, err := runSuite(gctx, s, filepath.Join(root, s.name), opts)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{Suites: results}, err
	}

	summary := Summary{Suites: results}
	for _, res := range results {
		summary.Failed += res.Failed
	}
	return summary, nil
}
