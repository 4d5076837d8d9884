package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/fetchkit/errors"
)

func TestBenchStats(t *testing.T) {
	s := newBenchStats()
	s.start()
	for i := 1; i <= 100; i++ {
		s.recordResponse(200, 10, time.Duration(i)*time.Millisecond)
	}
	s.recordResponse(503, 0, time.Millisecond)
	s.recordFailure(errors.Timeout("GET", nil), 2*time.Second)
	s.recordFailure(fmt.Errorf("plain"), time.Millisecond)
	s.stop()

	if s.total() != 103 {
		t.Errorf("expected 103 outcomes, got %d", s.total())
	}
	if p50 := s.quantile(50); p50 < 45*time.Millisecond || p50 > 55*time.Millisecond {
		t.Errorf("expected p50 near 50ms, got %s", p50)
	}

	var buf bytes.Buffer
	s.write(&buf)
	out := buf.String()
	for _, want := range []string{
		"requests   103 in",
		"received   1000 bytes",
		"200  100",
		"503  1",
		"TIMEOUT  1",
		"UNKNOWN  1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestBenchStats_Empty(t *testing.T) {
	s := newBenchStats()
	var buf bytes.Buffer
	s.write(&buf)
	if !strings.Contains(buf.String(), "no samples") {
		t.Errorf("expected empty notice, got:\n%s", buf.String())
	}
}

func TestClampLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{0, minLatencyUs},
		{time.Millisecond, 1000},
		{2 * time.Minute, maxLatencyUs},
	}
	for _, tt := range tests {
		if got := clampLatency(tt.in); got != tt.want {
			t.Errorf("clampLatency(%s): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", fmt.Errorf("x"), ExitFailure},
		{"explicit", withExitCode(ExitHTTPError, fmt.Errorf("x")), ExitHTTPError},
		{"wrapped explicit", fmt.Errorf("outer: %w", withExitCode(ExitConfigError, fmt.Errorf("x"))), ExitConfigError},
		{"construction", errors.Construction("bad"), ExitRequestError},
		{"network", errors.Network("GET", nil), ExitNetworkError},
		{"timeout", errors.Timeout("GET", nil), ExitNetworkError},
		{"too many redirects", errors.TooManyRedirects(10), ExitNetworkError},
		{"state", errors.State("closed"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
	if withExitCode(ExitFailure, nil) != nil {
		t.Error("expected nil error to stay nil")
	}
}
