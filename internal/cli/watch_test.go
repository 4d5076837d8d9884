package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/fetchkit/dispatch"
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/testutil/httpfixture"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatchFile(t *testing.T) {
	fx := httpfixture.Start(t)
	client, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close(context.Background())
	d, err := dispatch.New(client, dispatch.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close(context.Background())

	path := filepath.Join(t.TempDir(), "req.yaml")
	write := func(query string) {
		t.Helper()
		body := "url: " + fx.URL() + "/echo\nparams:\n  - {name: q, value: " + query + "}\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("one")

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, d, path, out, 10*time.Millisecond, logger.NewNop())
	}()

	waitFor(t, "first response", func() bool { return strings.Contains(out.String(), `"query":"q=one"`) })

	write("one")
	waitFor(t, "unchanged notice", func() bool { return strings.Contains(out.String(), "request unchanged") })

	write("two")
	waitFor(t, "second response", func() bool { return strings.Contains(out.String(), `"query":"q=two"`) })

	if n := strings.Count(out.String(), "HTTP 200 OK"); n != 2 {
		t.Errorf("expected 2 responses, got %d in:\n%s", n, out.String())
	}
	if n := len(fx.Requests()); n != 2 {
		t.Errorf("expected 2 requests at the server, got %d", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchFile_InvalidFile(t *testing.T) {
	client, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close(context.Background())
	d, err := dispatch.New(client, dispatch.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close(context.Background())

	path := filepath.Join(t.TempDir(), "req.yaml")
	if err := os.WriteFile(path, []byte("method: GET\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watchFile(ctx, d, path, out, 10*time.Millisecond, logger.NewNop()) }()

	waitFor(t, "error notice", func() bool { return strings.Contains(out.String(), "invalid request file") })
	cancel()
	<-done
}
