package cli

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/dispatch"
	"github.com/kbukum/fetchkit/httpclient"
)

// benchPlan bounds a bench run by request count or by duration.
type benchPlan struct {
	requests    int
	concurrency int
	duration    time.Duration
}

// runBench issues req repeatedly through d from plan.concurrency loops, each
// keeping one call in flight, and records every outcome in stats.
func runBench(ctx context.Context, d *dispatch.Dispatcher, req *httpclient.Request, plan benchPlan, stats *benchStats) {
	if plan.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, plan.duration)
		defer cancel()
	}

	var issued atomic.Int64
	var wg sync.WaitGroup
	stats.start()
	for range max(plan.concurrency, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				if plan.duration == 0 && issued.Add(1) > int64(plan.requests) {
					return
				}
				start := time.Now()
				res, err := d.Execute(ctx, req).Wait(ctx)
				if err != nil {
					return
				}
				elapsed := time.Since(start)
				if !res.IsSuccess() {
					if ctx.Err() != nil {
						return
					}
					stats.recordFailure(res.Err(), elapsed)
					continue
				}
				recordSuccess(res.Response(), elapsed, stats)
			}
		}()
	}
	wg.Wait()
	stats.stop()
}

func recordSuccess(resp *httpclient.Response, elapsed time.Duration, stats *benchStats) {
	defer resp.Close()
	code, err := resp.StatusCode()
	if err != nil {
		stats.recordFailure(err, elapsed)
		return
	}
	content, err := resp.Content()
	if err != nil {
		stats.recordFailure(err, elapsed)
		return
	}
	stats.recordResponse(code, len(content), elapsed)
}

func newBenchCommand(g *globalFlags) *cobra.Command {
	var (
		rf   requestFlags
		plan benchPlan
		rate float64
	)

	cmd := &cobra.Command{
		Use:   "bench [url]",
		Short: "Measure latency of repeated requests",
		Long: `Send the same request repeatedly and report latency percentiles,
status codes and error codes.

Examples:
  fetchkit bench -n 500 -c 16 https://example.com/health
  fetchkit bench --duration 30s --rate 50 -f search.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if plan.requests < 1 && plan.duration <= 0 {
				return withExitCode(ExitUsageError, fmt.Errorf("--requests must be positive"))
			}
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			req, err := rf.build(url)
			if err != nil {
				return err
			}

			prepare := func(cfg *Config) {
				cfg.Dispatch.Workers = max(plan.concurrency, 1)
				cfg.Dispatch.Rate = rate
			}
			return g.run(cmd, prepare, func(ctx context.Context, rt *runtime) error {
				stats := newBenchStats()
				runBench(ctx, rt.pool.Dispatcher(), req, plan, stats)
				stats.write(cmd.OutOrStdout())
				return nil
			})
		},
	}

	rf.register(cmd)
	fl := cmd.Flags()
	fl.IntVarP(&plan.requests, "requests", "n", 100, "Number of requests")
	fl.IntVarP(&plan.concurrency, "concurrency", "c", 4, "Calls in flight at once")
	fl.DurationVar(&plan.duration, "duration", 0, "Run for this long instead of a fixed count")
	fl.Float64VarP(&rate, "rate", "r", 0, "Maximum requests per second (0 means unlimited)")
	return cmd
}
