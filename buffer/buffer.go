// Package buffer implements the growable read buffer the fasta and fastq
// parsers scan for record boundaries. It owns a byte window fed by an
// opaque reader; unconsumed bytes survive refills, so a record split across
// physical reads is never lost.
package buffer

import (
	"bytes"
	"io"

	"github.com/emollier/dnaio/seq"
)

// DefaultChunkSize is the read size requested from the underlying reader
// per refill.
const DefaultChunkSize = 64 * 1024

// Buffer holds bytes read from r between a consume cursor and a fill level.
type Buffer struct {
	r     io.Reader
	data  []byte
	start int // bytes before start are consumed
	end   int // bytes between start and end are valid
	chunk int
	eof   bool
}

// New returns a buffer reading from r in chunks of chunkSize bytes.
// A chunkSize <= 0 selects DefaultChunkSize.
func New(r io.Reader, chunkSize int) *Buffer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Buffer{
		r:     r,
		data:  make([]byte, chunkSize),
		chunk: chunkSize,
	}
}

// Window returns the unconsumed bytes. The slice is only valid until the
// next Refill or Consume.
func (b *Buffer) Window() []byte {
	return b.data[b.start:b.end]
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return b.end - b.start
}

// EOF reports whether the underlying reader is exhausted. Unconsumed bytes
// may still remain in the window.
func (b *Buffer) EOF() bool {
	return b.eof
}

// Consume advances the cursor past the first n window bytes, allowing their
// storage to be reclaimed on the next refill.
func (b *Buffer) Consume(n int) {
	b.start += n
	if b.start > b.end {
		b.start = b.end
	}
	if b.start == b.end {
		b.start, b.end = 0, 0
	}
}

// Refill reads more bytes from the underlying reader, shifting unconsumed
// bytes to the front or growing the buffer as needed. It returns the number
// of bytes added; 0 with a nil error signals end-of-input.
func (b *Buffer) Refill() (int, error) {
	if b.eof {
		return 0, nil
	}
	if b.start > 0 {
		copy(b.data, b.data[b.start:b.end])
		b.end -= b.start
		b.start = 0
	}
	if len(b.data)-b.end < b.chunk {
		grown := make([]byte, len(b.data)*2+b.chunk)
		copy(grown, b.data[:b.end])
		b.data = grown
	}
	for empty := 0; ; empty++ {
		n, err := b.r.Read(b.data[b.end : b.end+b.chunk])
		b.end += n
		if err == io.EOF {
			b.eof = true
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if n > 0 {
			return n, nil
		}
		if empty >= maxEmptyReads {
			return 0, io.ErrNoProgress
		}
	}
}

// maxEmptyReads bounds how often a (0, nil) read is retried before the
// reader is declared broken.
const maxEmptyReads = 100

// SkipSpace consumes leading ASCII whitespace, refilling as needed, so
// blank lines before a record never reach the parsers. Whitespace-only
// input drains to an empty window at EOF.
func (b *Buffer) SkipSpace() error {
	for {
		w := b.Window()
		i := 0
		for i < len(w) && (w[i] == '\n' || w[i] == '\r' || w[i] == ' ' || w[i] == '\t') {
			i++
		}
		b.Consume(i)
		if b.Len() > 0 {
			return nil
		}
		n, err := b.Refill()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// ScanLines scans the window from offset from, advancing past line
// terminators until want of them are found or the window runs out. It
// returns the offset just past the last terminator found, or the window
// length when the scan runs out of input, together with the terminator
// count. Refills keep window offsets stable, so a caller can resume at the
// returned offset without rescanning earlier bytes.
func (b *Buffer) ScanLines(from, want int) (int, int) {
	w := b.Window()
	found := 0
	for found < want {
		j := bytes.IndexByte(w[from:], '\n')
		if j < 0 {
			return len(w), found
		}
		from += j + 1
		found++
	}
	return from, found
}

// FindRecordEnd scans the window from offset from for the end of the record
// that begins at window offset 0. For FASTA this is the position of the next
// header sentinel immediately following a line terminator; for FASTQ it is
// the position just past the fourth line terminator counted from the record
// start, so a '@' inside a quality line can never open a record. The second
// result is false when the window does not yet hold a complete record.
func (b *Buffer) FindRecordEnd(f seq.Format, from int) (int, bool) {
	w := b.Window()
	switch f {
	case seq.FormatFastq:
		end, terms := b.ScanLines(from, 4)
		if terms == 4 {
			return end, true
		}
		return 0, false
	default:
		// Skip the record's own header sentinel at offset 0; '>' bytes are
		// only recognized directly after a line terminator, never mid-line.
		i := from
		if i == 0 {
			i = 1
		}
		for {
			j := bytes.IndexByte(w[i:], '\n')
			if j < 0 {
				return 0, false
			}
			i += j + 1
			if i < len(w) && w[i] == '>' {
				return i, true
			}
			if i >= len(w) {
				return 0, false
			}
		}
	}
}
