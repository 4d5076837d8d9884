package httpclient

import (
	"bytes"
	"io"
	"iter"
)

// DefaultLineChunkSize is the chunk size LineIterator reads with when none is given.
const DefaultLineChunkSize = 512

// LineIterator yields a body one line at a time. Without a delimiter lines end
// at CR, LF or CRLF; otherwise at each occurrence of the delimiter. A trailing
// fragment without a terminator is the last line.
type LineIterator struct {
	chunks   *ChunkIterator
	delim    []byte
	pending  []byte
	overflow [][]byte
	err      error
}

// LineIterator iterates the body line by line, reading chunkSize bytes at a time.
func (r *Response) LineIterator(chunkSize int, delimiter []byte) (*LineIterator, error) {
	if chunkSize < 1 {
		chunkSize = DefaultLineChunkSize
	}
	chunks, err := r.ContentIterator(chunkSize)
	if err != nil {
		return nil, err
	}
	return NewLineIterator(chunks, delimiter), nil
}

// NewLineIterator splits the chunks of it into lines.
func NewLineIterator(chunks *ChunkIterator, delimiter []byte) *LineIterator {
	var delim []byte
	if len(delimiter) > 0 {
		delim = append([]byte(nil), delimiter...)
	}
	return &LineIterator{chunks: chunks, delim: delim}
}

// HasNext reports whether another line is available.
func (it *LineIterator) HasNext() bool {
	for len(it.overflow) == 0 {
		if !it.chunks.HasNext() {
			it.flush()
			if err := it.chunks.Err(); err != nil && it.err == nil {
				it.err = err
			}
			return len(it.overflow) > 0
		}
		chunk, err := it.chunks.Next()
		if err != nil {
			it.err = err
			it.flush()
			return len(it.overflow) > 0
		}
		it.feed(chunk)
	}
	return true
}

// feed appends chunk to the pending bytes and queues every completed line.
// Without a delimiter a trailing CR is held back, since it may be the first
// half of a CRLF split across chunks.
func (it *LineIterator) feed(chunk []byte) {
	content := append(it.pending, chunk...)
	work := content
	heldCR := it.delim == nil && len(content) > 0 && content[len(content)-1] == '\r'
	if heldCR {
		work = content[:len(content)-1]
	}

	parts := it.split(work)
	if len(parts) >= 2 {
		for _, p := range parts[:len(parts)-1] {
			it.overflow = append(it.overflow, bytes.Clone(p))
		}
		work = parts[len(parts)-1]
	}

	it.pending = bytes.Clone(work)
	if heldCR {
		it.pending = append(it.pending, '\r')
	}
}

// flush queues whatever is left once the source is exhausted.
func (it *LineIterator) flush() {
	if len(it.pending) == 0 {
		return
	}
	parts := it.split(it.pending)
	if len(parts) > 1 && len(parts[len(parts)-1]) == 0 {
		parts = parts[:len(parts)-1]
	}
	for _, p := range parts {
		it.overflow = append(it.overflow, bytes.Clone(p))
	}
	it.pending = nil
}

func (it *LineIterator) split(b []byte) [][]byte {
	if it.delim == nil {
		return SplitLines(b)
	}
	return SplitDelimiter(b, it.delim)
}

// Next returns the next line, or io.EOF after the last one.
func (it *LineIterator) Next() ([]byte, error) {
	if !it.HasNext() {
		if it.err != nil {
			return nil, it.err
		}
		return nil, io.EOF
	}
	line := it.overflow[0]
	it.overflow = it.overflow[1:]
	return line, nil
}

// Err returns the error that ended the iteration, if any.
func (it *LineIterator) Err() error { return it.err }

// Close abandons the iteration and releases the source.
func (it *LineIterator) Close() error {
	it.overflow = nil
	it.pending = nil
	return it.chunks.Close()
}

// All ranges over the remaining lines. Breaking out of the loop closes the
// iterator. A failure is yielded once as the final pair.
func (it *LineIterator) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		defer it.Close()
		for it.HasNext() {
			line, _ := it.Next()
			if !yield(line, nil) {
				return
			}
		}
		if it.err != nil {
			yield(nil, it.err)
		}
	}
}

// SplitLines splits b at every CRLF, CR or LF. A trailing terminator yields a
// final empty element, as with bytes.Split.
func SplitLines(b []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\r':
			out = append(out, b[start:i])
			if i+1 < len(b) && b[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	return append(out, b[start:])
}

// SplitDelimiter splits b at every occurrence of delim. An empty delimiter
// returns b whole.
func SplitDelimiter(b, delim []byte) [][]byte {
	if len(delim) == 0 {
		return [][]byte{b}
	}
	return bytes.Split(b, delim)
}
