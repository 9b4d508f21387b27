// Package to read and write FASTQ format files
package fastq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/emollier/dnaio/buffer"
	e "github.com/emollier/dnaio/errors"
	"github.com/emollier/dnaio/scan"
	"github.com/emollier/dnaio/seq"
)

var nl = []byte{'\n'}

// Fastq sequence format reader type. A record is always exactly four
// lines; boundaries are tracked by line count, never by scanning for '@',
// so a quality line starting with '@' or '>' cannot open a record.
//
// Alphabet, Offset and the quality bounds may be adjusted before the first
// Read. A nil Alphabet disables sequence validation; QualMax < QualMin
// disables quality validation.
type Reader struct {
	Alphabet *scan.Alphabet
	Offset   byte // quality encoding offset, conventionally 33
	QualMin  int  // lowest accepted quality value
	QualMax  int  // highest accepted quality value

	b       *buffer.Buffer
	n       int
	scanned int // window offset already scanned for line terminators
	nls     int // terminators found so far for the current record
	err     error
}

// Returns a new fastq format reader using f.
func NewReader(f io.Reader) *Reader {
	return NewBufferReader(buffer.New(f, 0))
}

// Returns a new fastq format reader with an explicit refill size.
func NewReaderSize(f io.Reader, chunkSize int) *Reader {
	return NewBufferReader(buffer.New(f, chunkSize))
}

// Returns a new fastq format reader over an existing buffer. The buffer may
// already hold probed bytes; the reader takes exclusive ownership.
func NewBufferReader(b *buffer.Buffer) *Reader {
	return &Reader{
		Alphabet: scan.Letters,
		Offset:   33,
		QualMin:  0,
		QualMax:  93,
		b:        b,
	}
}

// Read returns the next sequence record, or io.EOF after the last one. Any
// other error is sticky: subsequent calls return it again until Resync is
// called.
func (r *Reader) Read() (*seq.Seq, error) {
	if r.err != nil {
		return nil, r.err
	}
	if err := r.b.SkipSpace(); err != nil {
		return nil, r.fail(err)
	}
	if r.b.Len() == 0 {
		return nil, r.fail(io.EOF)
	}
	end, err := r.complete()
	if err != nil {
		return nil, r.fail(err)
	}
	s, err := r.parse(r.b.Window()[:end])
	if err != nil {
		return nil, r.fail(err)
	}
	r.b.Consume(end)
	r.n++
	return s, nil
}

// complete refills until the window holds the four lines of the record
// starting at offset 0, resuming the terminator scan where the previous
// refill left off. At end-of-input a final record may lack its trailing
// line terminator; anything shorter is truncated.
func (r *Reader) complete() (int, error) {
	for {
		pos, found := r.b.ScanLines(r.scanned, 4-r.nls)
		r.scanned, r.nls = pos, r.nls+found
		if r.nls == 4 {
			end := r.scanned
			r.scanned, r.nls = 0, 0
			return end, nil
		}
		n, err := r.b.Refill()
		if err != nil {
			return 0, err
		}
		if n != 0 {
			continue
		}
		w := r.b.Window()
		if r.nls == 3 && !endsWithNL(w) {
			r.scanned, r.nls = 0, 0
			return len(w), nil
		}
		return 0, fmt.Errorf("fastq: record %d: truncated at end of input: %w", r.n+1, e.ErrMalformed)
	}
}

func endsWithNL(w []byte) bool {
	return len(w) > 0 && w[len(w)-1] == '\n'
}

func (r *Reader) parse(rec []byte) (*seq.Seq, error) {
	var lines [4][]byte
	for i := 0; i < 4; i++ {
		line := rec
		if j := bytes.IndexByte(rec, '\n'); j >= 0 {
			line = rec[:j]
			rec = rec[j+1:]
		} else {
			rec = nil
		}
		lines[i] = seq.TrimCR(line)
	}
	if len(lines[0]) == 0 || lines[0][0] != '@' {
		return nil, fmt.Errorf("fastq: record %d: header does not start with '@': %w", r.n+1, e.ErrMalformed)
	}
	if len(lines[2]) == 0 || lines[2][0] != '+' {
		return nil, fmt.Errorf("fastq: record %d: separator line does not start with '+': %w", r.n+1, e.ErrMalformed)
	}
	id, comment := seq.SplitHeader(lines[0][1:])
	if len(id) == 0 {
		return nil, fmt.Errorf("fastq: record %d: empty record name: %w", r.n+1, e.ErrMalformed)
	}
	sq, qual := lines[1], lines[3]
	if len(sq) != len(qual) {
		return nil, fmt.Errorf("fastq: record %q: sequence length %d != quality length %d: %w",
			id, len(sq), len(qual), e.ErrLengthMismatch)
	}
	if r.Alphabet != nil && !scan.ValidSeq(r.Alphabet, sq) {
		return nil, fmt.Errorf("fastq: record %q: sequence contains bytes outside the accepted alphabet: %w", id, e.ErrInvalidContent)
	}
	if r.QualMin <= r.QualMax {
		lo, hi := qualBound(r.Offset, r.QualMin), qualBound(r.Offset, r.QualMax)
		if !scan.ValidQual(qual, lo, hi) {
			return nil, fmt.Errorf("fastq: record %q: quality values outside [%d, %d]: %w",
				id, r.QualMin, r.QualMax, e.ErrInvalidContent)
		}
	}
	// Copy out of the buffer window; the record outlives the next refill.
	return seq.New(
		bytes.Clone(id), bytes.Clone(comment), bytes.Clone(sq), bytes.Clone(qual),
	), nil
}

func qualBound(offset byte, v int) byte {
	b := int(offset) + v
	if b > 255 {
		b = 255
	}
	if b < 0 {
		b = 0
	}
	return byte(b)
}

// Resync discards input up to the next line starting with '@' and clears a
// sticky error. Since '@' is a legal quality byte this is best effort: it
// may resume on a quality line and fail again, but it never yields a record
// that does not parse. io.EOF is not cleared.
func (r *Reader) Resync() error {
	if r.err == io.EOF {
		return io.EOF
	}
	r.err = nil
	r.scanned, r.nls = 0, 0
	for {
		w := r.b.Window()
		if i := bytes.Index(w, []byte("\n@")); i >= 0 {
			r.b.Consume(i + 1)
			return nil
		}
		n, err := r.b.Refill()
		if err != nil {
			return r.fail(err)
		}
		if n == 0 {
			r.b.Consume(r.b.Len())
			return r.fail(io.EOF)
		}
	}
}

func (r *Reader) fail(err error) error {
	r.err = err
	return err
}

// Fastq sequence format writer type.
type Writer struct {
	f io.Writer
	w *bufio.Writer
}

// Returns a new fastq format writer using f.
func NewWriter(f io.Writer) *Writer {
	return &Writer{
		f: f,
		w: bufio.NewWriter(f),
	}
}

// Returns a new fastq format writer using a filename, truncating any
// existing file. If appending is required use NewWriter and os.OpenFile.
func NewWriterName(name string) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return NewWriter(f), nil
}

// Write a single sequence and return the number of bytes written and any
// error. Records without qualities are rejected; nothing else is
// re-validated.
func (w *Writer) Write(s *seq.Seq) (int, error) {
	if s.Qual == nil {
		return 0, fmt.Errorf("fastq: record %q: %w", s.ID, e.ErrMissingQual)
	}
	return Format(s, w.w)
}

// Format a single sequence into fastq on wr: four lines, never wrapped, so
// quality and sequence stay byte-positional.
func Format(s *seq.Seq, wr io.Writer) (int, error) {
	var n int
	for _, part := range [][]byte{{'@'}, s.Header(), nl, s.Seq, nl, {'+'}, nl, s.Qual, nl} {
		m, err := wr.Write(part)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Flush the writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close the writer, flushing any unwritten sequence. The underlying writer
// is closed if it implements io.Closer.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if c, ok := w.f.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
