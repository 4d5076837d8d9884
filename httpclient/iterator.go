package httpclient

import (
	"bufio"
	"bytes"
	"io"
	"iter"
)

// DefaultChunkSize is the chunk size of ContentIterator when none is given.
const DefaultChunkSize = 1

type peeker interface {
	Peek(n int) ([]byte, error)
	Buffered() int
}

// ChunkIterator yields a body in chunks of at most a fixed size. It is lazy,
// finite and not restartable. The source is closed exactly once, on end of
// stream, on error or on Close.
type ChunkIterator struct {
	src     io.Reader
	peek    peeker
	size    int
	held    []byte
	err     error
	done    bool
	release func() error
}

func newChunkIterator(src io.Reader, size int, release func() error) *ChunkIterator {
	if size < 1 {
		size = DefaultChunkSize
	}
	it := &ChunkIterator{src: src, size: size, release: release}
	if p, ok := src.(peeker); ok {
		it.peek = p
	}
	return it
}

// ContentIterator iterates the body in chunks of at most chunkSize bytes.
// A streaming response is read from the connection and released at the end;
// a buffered one is read from the cached content.
func (r *Response) ContentIterator(chunkSize int) (*ChunkIterator, error) {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	if err := r.connected(); err != nil {
		return nil, err
	}
	if r.request.Stream() && !r.content.done() {
		raw, err := r.Raw()
		if err != nil {
			return nil, err
		}
		return newChunkIterator(bufio.NewReaderSize(raw, max(chunkSize, 4096)), chunkSize, r.release), nil
	}
	content, err := r.Content()
	if err != nil {
		return nil, err
	}
	return newChunkIterator(bytes.NewReader(content), chunkSize, nil), nil
}

// HasNext reports whether another chunk is available. It looks one byte
// ahead: a peekable source is rewound, otherwise the byte is kept for the
// next chunk.
func (it *ChunkIterator) HasNext() bool {
	if it.done {
		return false
	}
	if len(it.held) > 0 {
		return true
	}

	var err error
	if it.peek != nil {
		_, err = it.peek.Peek(1)
	} else {
		b := make([]byte, 1)
		var n int
		n, err = io.ReadFull(it.src, b)
		if n == 1 {
			it.held = b
		}
	}
	if err != nil && len(it.held) == 0 {
		if err != io.EOF {
			it.err = err
		}
		it.finish()
		return false
	}
	return true
}

// Next returns the next chunk, or io.EOF after the last one.
func (it *ChunkIterator) Next() ([]byte, error) {
	if !it.HasNext() {
		if it.err != nil {
			return nil, it.err
		}
		return nil, io.EOF
	}

	buf := make([]byte, it.size)
	n := copy(buf, it.held)
	it.held = nil

	if it.peek != nil {
		want := min(it.size-n, it.peek.Buffered())
		m, err := io.ReadFull(it.src, buf[n:n+want])
		n += m
		if err != nil {
			it.err = err
			it.finish()
		}
	} else if n < it.size {
		m, err := it.src.Read(buf[n:])
		n += m
		if err != nil && err != io.EOF {
			it.err = err
			it.finish()
		}
	}

	if n == 0 && it.err != nil {
		return nil, it.err
	}
	return buf[:n], nil
}

// Err returns the error that ended the iteration, if any.
func (it *ChunkIterator) Err() error { return it.err }

// Close abandons the iteration and releases the source.
func (it *ChunkIterator) Close() error {
	return it.finish()
}

func (it *ChunkIterator) finish() error {
	if it.done {
		return nil
	}
	it.done = true
	it.held = nil
	if it.release != nil {
		return it.release()
	}
	return nil
}

// All ranges over the remaining chunks. Breaking out of the loop closes the
// iterator. A failure is yielded once as the final pair.
func (it *ChunkIterator) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		defer it.Close()
		for it.HasNext() {
			chunk, err := it.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if it.err != nil {
			yield(nil, it.err)
		}
	}
}
