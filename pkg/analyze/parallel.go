package analyze

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fyerfyer/backcone/pkg/circuit"
)

// WorkerFactory creates an analyzer bound to its own oracle session. A
// session's
// simulation context is global to that session, so patterns can only be
// analyzed concurrently when every worker owns a separate session; the
// factory is responsible for provisioning that (typically by launching a
// fresh shell and restoring the circuit from a shared record, which keeps
// path indices comparable across workers). AnalyzeParallel closes each
// provisioned session once its worker is done; a factory failing partway
// must clean up after itself.
type WorkerFactory func(ctx context.Context) (*Analyzer, error)

// PatternResult is one pattern's outcome, with activated paths reported
// by index so results from different workers can be merged.
type PatternResult struct {
	Pattern        int
	ActivatedPaths []int
}

// AnalyzeParallel partitions pattern indices across workers and merges
// the per-pattern activation results, ordered by pattern index. With
// workers <= 1 it degenerates to a single sequential worker.
func AnalyzeParallel(ctx context.Context, factory WorkerFactory, patternIndices []int, workers int) ([]PatternResult, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(patternIndices) {
		workers = len(patternIndices)
	}
	if len(patternIndices) == 0 {
		return nil, nil
	}

	work := make(chan int)
	var mu sync.Mutex
	var results []PatternResult

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for _, idx := range patternIndices {
			select {
			case work <- idx:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			a, err := factory(ctx)
			if err != nil {
				return fmt.Errorf("parallel analysis: %w", err)
			}
			defer a.Close()
			for idx := range work {
				pat := circuit.NewPattern(idx)
				if err := a.AnalyzePattern(pat); err != nil {
					return err
				}
				res := PatternResult{Pattern: idx}
				for _, pp := range pat.ActivatedPinPaths() {
					res.ActivatedPaths = append(res.ActivatedPaths, pp.Index)
				}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Pattern < results[j].Pattern })
	return results, nil
}
