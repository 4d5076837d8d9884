package cli

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"

	"github.com/kbukum/fetchkit/errors"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// benchStats aggregates the outcomes of a bench run.
type benchStats struct {
	mu       sync.Mutex
	latency  *hdrhistogram.Histogram
	statuses map[int]int
	failures map[string]int
	bytes    int64
	started  time.Time
	finished time.Time
}

func newBenchStats() *benchStats {
	return &benchStats{
		latency:  hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statuses: make(map[int]int),
		failures: make(map[string]int),
	}
}

func (s *benchStats) start() { s.started = time.Now() }
func (s *benchStats) stop()  { s.finished = time.Now() }

// recordResponse records a completed exchange.
func (s *benchStats) recordResponse(status int, size int, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status]++
	s.bytes += int64(size)
	_ = s.latency.RecordValue(clampLatency(d))
}

// recordFailure records a failed call under its error code.
func (s *benchStats) recordFailure(err error, d time.Duration) {
	code := "UNKNOWN"
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[code]++
	_ = s.latency.RecordValue(clampLatency(d))
}

func clampLatency(d time.Duration) int64 {
	return min(max(d.Microseconds(), minLatencyUs), maxLatencyUs)
}

func (s *benchStats) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.statuses {
		n += c
	}
	for _, c := range s.failures {
		n += c
	}
	return n
}

func (s *benchStats) quantile(q float64) time.Duration {
	return time.Duration(s.latency.ValueAtQuantile(q)) * time.Microsecond
}

// write prints the report.
func (s *benchStats) write(w io.Writer) {
	total := s.total()
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.finished.Sub(s.started)
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s\n", bold("Summary"))
	fmt.Fprintf(w, "  requests   %d in %s\n", total, elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Fprintf(w, "  rate       %.1f req/s\n", float64(total)/elapsed.Seconds())
	}
	fmt.Fprintf(w, "  received   %d bytes\n\n", s.bytes)

	fmt.Fprintf(w, "%s\n", bold("Latency"))
	if s.latency.TotalCount() > 0 {
		fmt.Fprintf(w, "  min %s  mean %s  max %s\n",
			time.Duration(s.latency.Min())*time.Microsecond,
			(time.Duration(s.latency.Mean()) * time.Microsecond).Round(time.Microsecond),
			time.Duration(s.latency.Max())*time.Microsecond)
		fmt.Fprintf(w, "  p50 %s  p95 %s  p99 %s\n\n", s.quantile(50), s.quantile(95), s.quantile(99))
	} else {
		fmt.Fprintf(w, "  no samples\n\n")
	}

	if len(s.statuses) > 0 {
		fmt.Fprintf(w, "%s\n", bold("Status codes"))
		codes := make([]int, 0, len(s.statuses))
		for code := range s.statuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %s  %d\n", statusColor(code).Sprintf("%d", code), s.statuses[code])
		}
	}

	if len(s.failures) > 0 {
		fmt.Fprintf(w, "%s\n", bold("Errors"))
		names := make([]string, 0, len(s.failures))
		for name := range s.failures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s  %d\n", color.RedString(name), s.failures[name])
		}
	}
}
