// Package to read and write FASTA format files
package fasta

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

func writeAll(w io.Writer, parts ...[]byte) (int, error) {
	var n int
	for _, p := range parts {
		m, err := w.Write(p)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Fasta sequence format reader type. The zero value is not usable; use one
// of the constructors. Alphabet may be swapped for scan.Nucleotide or
// scan.AminoAcid before the first Read, or set to nil to disable content
// validation.
type Reader struct {
	Alphabet *scan.Alphabet

	b       *buffer.Buffer
	n       int // records yielded, for error context
	scanned int // window offset already scanned for a record end
	err     error
}

// Returns a new fasta format reader using f.
func NewReader(f io.Reader) *Reader {
	return NewBufferReader(buffer.New(f, 0))
}

// Returns a new fasta format reader with an explicit refill size.
func NewReaderSize(f io.Reader, chunkSize int) *Reader {
	return NewBufferReader(buffer.New(f, chunkSize))
}

// Returns a new fasta format reader over an existing buffer. The buffer may
// already hold probed bytes; the reader takes exclusive ownership.
func NewBufferReader(b *buffer.Buffer) *Reader {
	return &Reader{
		Alphabet: scan.Letters,
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
	if r.b.Window()[0] != '>' {
		return nil, r.fail(fmt.Errorf("fasta: record %d: header does not start with '>': %w", r.n+1, e.ErrMalformed))
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
	r.scanned = 0
	r.n++
	return s, nil
}

// complete refills until the window holds one whole record starting at
// offset 0 and returns the record length. At end-of-input the remaining
// window is the final record.
func (r *Reader) complete() (int, error) {
	for {
		if end, ok := r.b.FindRecordEnd(seq.FormatFasta, r.scanned); ok {
			return end, nil
		}
		// Resume scanning at the last junction so multi-chunk records are
		// not rescanned from the start each refill.
		if r.scanned = r.b.Len() - 1; r.scanned < 1 {
			r.scanned = 1
		}
		n, err := r.b.Refill()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return r.b.Len(), nil
		}
	}
}

func (r *Reader) parse(rec []byte) (*seq.Seq, error) {
	header := rec[1:]
	var body []byte
	if i := bytes.IndexByte(rec, '\n'); i >= 0 {
		header = rec[1:i]
		body = rec[i+1:]
	}
	id, comment := seq.SplitHeader(seq.TrimCR(header))
	if len(id) == 0 {
		return nil, fmt.Errorf("fasta: record %d: empty record name: %w", r.n+1, e.ErrMalformed)
	}
	sq := seq.JoinLines(body)
	if r.Alphabet != nil && !scan.ValidSeq(r.Alphabet, sq) {
		return nil, fmt.Errorf("fasta: record %q: sequence contains bytes outside the accepted alphabet: %w", id, e.ErrInvalidContent)
	}
	// ID and comment alias the buffer window; the record outlives the next
	// refill, so copy them out.
	return seq.New(bytes.Clone(id), bytes.Clone(comment), sq, nil), nil
}

// Resync discards input up to the next header sentinel at a line start and
// clears a sticky error, trading the skipped bytes for the ability to keep
// reading after a malformed record. io.EOF is not cleared.
func (r *Reader) Resync() error {
	if r.err == io.EOF {
		return io.EOF
	}
	r.err = nil
	r.scanned = 0
	for {
		if end, ok := r.b.FindRecordEnd(seq.FormatFasta, 1); ok {
			r.b.Consume(end)
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

// Fasta sequence format writer type.
type Writer struct {
	f     io.Writer
	w     *bufio.Writer
	width int
}

// Returns a new fasta format writer using f. Sequences are wrapped at width
// columns; width <= 0 writes each sequence on a single line.
func NewWriter(f io.Writer, width int) *Writer {
	return &Writer{
		f:     f,
		w:     bufio.NewWriter(f),
		width: width,
	}
}

// Returns a new fasta format writer using a filename, truncating any
// existing file. If appending is required use NewWriter and os.OpenFile.
func NewWriterName(name string, width int) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return NewWriter(f, width), nil
}

// Write a single sequence and return the number of bytes written and any
// error. The record is trusted; no validation is re-applied.
func (w *Writer) Write(s *seq.Seq) (int, error) {
	return Format(s, w.w, w.width)
}

// Format a single sequence into fasta on wr, wrapped at width columns.
func Format(s *seq.Seq, wr io.Writer, width int) (int, error) {
	n, err := writeAll(wr, []byte{'>'}, s.Header(), nl)
	if err != nil {
		return n, err
	}
	body := s.Seq
	if width <= 0 {
		m, err := writeAll(wr, body, nl)
		return n + m, err
	}
	for len(body) > 0 {
		line := body
		if len(line) > width {
			line = line[:width]
		}
		body = body[len(line):]
		m, err := writeAll(wr, line, nl)
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
