package httpclient

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/kbukum/fetchkit/testutil/httpfixture"
)

func collectChunks(t *testing.T, it *ChunkIterator) ([]byte, int) {
	t.Helper()
	var buf bytes.Buffer
	n := 0
	for chunk, err := range it.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		buf.Write(chunk)
		n++
	}
	return buf.Bytes(), n
}

func TestContentIterator_ReassemblesContent(t *testing.T) {
	fx := httpfixture.Start(t)
	c := newTestClient(t, Config{})
	ctx := context.Background()

	buffered, err := c.Get(ctx, fx.URL()+"/bytes/100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := buffered.Content()

	for _, stream := range []bool{false, true} {
		resp, err := c.Get(ctx, fx.URL()+"/bytes/100", WithStream(stream))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		it, err := resp.ContentIterator(1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, chunks := collectChunks(t, it)
		if !bytes.Equal(got, want) {
			t.Errorf("stream=%v: reassembled content differs", stream)
		}
		if chunks != 100 {
			t.Errorf("stream=%v: expected 100 chunks of one byte, got %d", stream, chunks)
		}
	}
}

func TestContentIterator_ChunkSizeBound(t *testing.T) {
	fx := httpfixture.Start(t)
	c := newTestClient(t, Config{})

	resp, err := c.Get(context.Background(), fx.URL()+"/bytes/10", WithStream(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it, err := resp.ContentIterator(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sizes []int
	for chunk, err := range it.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunk) == 0 || len(chunk) > 4 {
			t.Errorf("chunk size %d out of bounds", len(chunk))
		}
		sizes = append(sizes, len(chunk))
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != 10 {
		t.Errorf("expected 10 bytes, got %d", total)
	}
}

func TestContentIterator_CloseEarlyReleasesStream(t *testing.T) {
	fx := httpfixture.Start(t)
	c := newTestClient(t, Config{})

	resp, err := c.Get(context.Background(), fx.URL()+"/bytes/64", WithStream(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it, _ := resp.ContentIterator(8)
	for range it.All() {
		break
	}
	if resp.State() != StateClosed {
		t.Errorf("expected closed after break, got %s", resp.State())
	}
	if it.HasNext() {
		t.Error("closed iterator should be exhausted")
	}
	if _, err := it.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestChunkIterator_NonPeekableSource(t *testing.T) {
	src := io.MultiReader(strings.NewReader("hel"), strings.NewReader("lo world"))
	released := 0
	it := newChunkIterator(src, 3, func() error { released++; return nil })

	if !it.HasNext() || !it.HasNext() {
		t.Fatal("HasNext should be idempotent")
	}
	got, _ := collectChunks(t, it)
	if string(got) != "hello world" {
		t.Errorf("expected hello world, got %q", got)
	}
	if released != 1 {
		t.Errorf("expected exactly one release, got %d", released)
	}
	_ = it.Close()
	if released != 1 {
		t.Errorf("close after exhaustion released again: %d", released)
	}
}

func TestChunkIterator_EmptySource(t *testing.T) {
	it := newChunkIterator(strings.NewReader(""), 0, nil)
	if it.HasNext() {
		t.Error("expected no chunks")
	}
	if it.Err() != nil {
		t.Errorf("expected no error, got %v", it.Err())
	}
}

func TestChunkIterator_SourceError(t *testing.T) {
	boom := io.ErrClosedPipe
	it := newChunkIterator(io.MultiReader(strings.NewReader("ab"), iotest.ErrReader(boom)), 1, nil)

	var got []byte
	var last error
	for chunk, err := range it.All() {
		if err != nil {
			last = err
			break
		}
		got = append(got, chunk...)
	}
	if string(got) != "ab" {
		t.Errorf("expected ab before failure, got %q", got)
	}
	if last != boom {
		t.Errorf("expected source error, got %v", last)
	}
	if it.Err() != boom {
		t.Errorf("expected Err() to report the failure, got %v", it.Err())
	}
}
