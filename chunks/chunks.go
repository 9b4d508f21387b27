// Package chunks splits raw sequence streams into record-aligned byte
// chunks of roughly a target size, so large files can be fanned out to
// worker goroutines without parsing on the distribution path. Every chunk
// starts at a record header and ends at a record boundary.
package chunks

import (
	"bytes"
	"fmt"
	"io"

	"github.com/emollier/dnaio/buffer"
	e "github.com/emollier/dnaio/errors"
	"github.com/emollier/dnaio/seq"
)

// DefaultSize is the target chunk size when none is given.
const DefaultSize = 1 << 20

// Chunker cuts one stream into record-aligned chunks.
type Chunker struct {
	b      *buffer.Buffer
	format seq.Format
	size   int
	err    error
}

// NewChunker returns a chunker producing chunks of roughly size bytes.
// A chunk holding a single oversized record may exceed the target; a chunk
// never splits a record. size <= 0 selects DefaultSize.
func NewChunker(r io.Reader, size int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	return &Chunker{
		b:    buffer.New(r, 0),
		size: size,
	}
}

// Format returns the detected format, FormatUnknown before the first Next
// of a non-empty stream.
func (c *Chunker) Format() seq.Format {
	return c.format
}

func (c *Chunker) detect() error {
	if c.format != seq.FormatUnknown {
		return nil
	}
	if err := c.b.SkipSpace(); err != nil {
		return err
	}
	if c.b.Len() == 0 {
		return io.EOF
	}
	switch c.b.Window()[0] {
	case '>':
		c.format = seq.FormatFasta
	case '@':
		c.format = seq.FormatFastq
	default:
		return fmt.Errorf("chunks: input starts with %q, want '>' or '@': %w", c.b.Window()[0], e.ErrUnknownFormat)
	}
	return nil
}

// Next returns the next record-aligned chunk, or io.EOF after the last one.
// The returned slice is a copy and stays valid after further calls.
func (c *Chunker) Next() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if err := c.detect(); err != nil {
		return nil, c.fail(err)
	}
	for c.b.Len() < c.size && !c.b.EOF() {
		if _, err := c.b.Refill(); err != nil {
			return nil, c.fail(err)
		}
	}
	w := c.b.Window()
	if len(w) == 0 {
		return nil, c.fail(io.EOF)
	}
	cut := lastBoundary(w, c.format)
	for cut == 0 && !c.b.EOF() {
		// No full record buffered yet; the record outgrows the target size.
		if _, err := c.b.Refill(); err != nil {
			return nil, c.fail(err)
		}
		w = c.b.Window()
		cut = lastBoundary(w, c.format)
	}
	if c.b.EOF() && cut < len(w) {
		// The final records end at end-of-input, not at a boundary.
		cut = len(w)
	}
	out := bytes.Clone(w[:cut])
	c.b.Consume(cut)
	return out, nil
}

func (c *Chunker) fail(err error) error {
	c.err = err
	return err
}

// lastBoundary returns the offset just past the last complete record in w,
// assuming w starts at a record header. 0 means no complete record yet.
func lastBoundary(w []byte, f seq.Format) int {
	if f == seq.FormatFastq {
		return cutRecords(w, f, frameLines(w)/4)
	}
	if i := bytes.LastIndex(w, []byte("\n>")); i >= 0 {
		return i + 1
	}
	return 0
}

// frameLines counts the terminated non-blank lines in w. Blank separator
// lines between records are not frame lines; the parsers skip them, so the
// chunk framing must not count them either.
func frameLines(w []byte) int {
	n := 0
	for pos := 0; ; {
		j := bytes.IndexByte(w[pos:], '\n')
		if j < 0 {
			return n
		}
		if len(bytes.TrimSpace(w[pos:pos+j])) > 0 {
			n++
		}
		pos += j + 1
	}
}

// skipBlankLines extends pos past terminated blank lines, so the chunk after
// the cut starts at a record sentinel.
func skipBlankLines(w []byte, pos int) int {
	for {
		j := bytes.IndexByte(w[pos:], '\n')
		if j < 0 || len(bytes.TrimSpace(w[pos:pos+j])) > 0 {
			return pos
		}
		pos += j + 1
	}
}

// cutRecords returns the offset just past the k-th complete record in w.
func cutRecords(w []byte, f seq.Format, k int) int {
	if k <= 0 {
		return 0
	}
	if f == seq.FormatFastq {
		pos := 0
		for frames := 0; frames < 4*k; {
			j := bytes.IndexByte(w[pos:], '\n')
			if j < 0 {
				return 0
			}
			if len(bytes.TrimSpace(w[pos:pos+j])) > 0 {
				frames++
			}
			pos += j + 1
		}
		return skipBlankLines(w, pos)
	}
	pos := 1
	for ; k > 0; k-- {
		j := bytes.Index(w[pos:], []byte("\n>"))
		if j < 0 {
			return 0
		}
		pos += j + 1
	}
	return pos
}

// records counts the complete records in w. With eof set, a trailing
// non-whitespace slice counts as the final record.
func records(w []byte, f seq.Format, eof bool) int {
	var n int
	if f == seq.FormatFastq {
		n = frameLines(w) / 4
		if eof && len(bytes.TrimSpace(w[cutRecords(w, f, n):])) > 0 {
			n++
		}
		return n
	}
	n = bytes.Count(w, []byte("\n>"))
	if eof && len(bytes.TrimSpace(w)) > 0 {
		n++
	}
	return n
}
