package lift

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"dartlift/internal/dartrt"
	"dartlift/internal/diag"
	"dartlift/internal/observ"
	"dartlift/internal/snapshot"
)

// Event reports driver progress to an observer, one event per finished
// function.
type Event struct {
	Fn    *dartrt.Function
	Index int
	Total int
}

// Options configures a lifting run.
type Options struct {
	// Jobs caps worker parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds each function's bag.
	MaxDiagnostics int
	// Progress, when set, receives one event per lifted function. The
	// channel is closed when the run ends.
	Progress chan<- Event
}

// RunResult is a whole-snapshot lift.
type RunResult struct {
	Functions []*Result
	Bags      []*diag.Bag
	Timing    observ.Report
}

// LiftAll lifts every function in the store that has decoded code, in
// parallel. Results come back ordered by entry address regardless of worker
// scheduling; each worker writes only its own index.
func LiftAll(ctx context.Context, store *snapshot.Store, thread *dartrt.ThreadInfo, opts Options) (*RunResult, error) {
	timer := observ.NewTimer()

	collect := timer.Begin("collect")
	fns := make([]*dartrt.Function, 0, len(store.Functions()))
	for _, fn := range store.Functions() {
		if _, ok := store.Code(fn.Addr); ok {
			fns = append(fns, fn)
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].Addr < fns[j].Addr })
	timer.End(collect, "")

	if opts.Progress != nil {
		defer close(opts.Progress)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}

	results := make([]*Result, len(fns))
	bags := make([]*diag.Bag, len(fns))

	phase := timer.Begin("lift")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(fns), 1)))

	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(maxDiag)
			lifter := New(thread, store, diag.NewBagReporter(bag))

			recs, _ := store.Code(fn.Addr)
			results[i] = lifter.LiftFunction(fn, FromRecords(recs))
			bag.Sort()
			bags[i] = bag

			if opts.Progress != nil {
				select {
				case opts.Progress <- Event{Fn: fn, Index: i, Total: len(fns)}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	timer.End(phase, "")

	return &RunResult{Functions: results, Bags: bags, Timing: timer.Report()}, nil
}
