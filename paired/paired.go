// Package paired keeps two mate record streams in lock-step and detects
// desynchronization the moment it happens.
package paired

import (
	"errors"
	"fmt"
	"io"

	e "github.com/emollier/dnaio/errors"
	"github.com/emollier/dnaio/seq"
)

// Reader zips two single-end readers. It owns both exclusively; advancing
// them from elsewhere desynchronizes the pair stream.
//
// Mates may be replaced with a custom predicate before the first ReadPair;
// nil disables name checking.
type Reader struct {
	Mates seq.MatePredicate

	r1, r2 seq.Reader
	err    error
}

// NewReader returns a paired reader zipping r1 and r2.
func NewReader(r1, r2 seq.Reader) *Reader {
	return &Reader{
		Mates: seq.Mates,
		r1:    r1,
		r2:    r2,
	}
}

// ReadPair returns the next record from each mate stream, or io.EOF after
// both end together. One stream ending before the other is ErrPairCount on
// that very call, never a silent short stream. There is no look-ahead: one
// record per side is in flight, strictly zipped.
func (r *Reader) ReadPair() (*seq.Seq, *seq.Seq, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	s1, err1 := r.r1.Read()
	s2, err2 := r.r2.Read()
	switch {
	case err1 == nil && err2 == nil:
	case errors.Is(err1, io.EOF) && errors.Is(err2, io.EOF):
		return nil, nil, r.fail(io.EOF)
	case errors.Is(err1, io.EOF):
		if err2 != nil {
			return nil, nil, r.fail(err2)
		}
		return nil, nil, r.fail(fmt.Errorf("paired: file 1 ended but file 2 still has records: %w", e.ErrPairCount))
	case errors.Is(err2, io.EOF):
		if err1 != nil {
			return nil, nil, r.fail(err1)
		}
		return nil, nil, r.fail(fmt.Errorf("paired: file 2 ended but file 1 still has records: %w", e.ErrPairCount))
	case err1 != nil:
		return nil, nil, r.fail(err1)
	default:
		return nil, nil, r.fail(err2)
	}
	if r.Mates != nil && !r.Mates(s1.ID, s2.ID) {
		return nil, nil, r.fail(fmt.Errorf("paired: records %q and %q are not mates: %w", s1.ID, s2.ID, e.ErrPairName))
	}
	return s1, s2, nil
}

func (r *Reader) fail(err error) error {
	r.err = err
	return err
}

// InterleavedReader reads mate pairs from a single stream holding records
// in alternating R1/R2 order.
type InterleavedReader struct {
	Mates seq.MatePredicate

	r   seq.Reader
	err error
}

// NewInterleavedReader returns a paired reader over one interleaved stream.
func NewInterleavedReader(r seq.Reader) *InterleavedReader {
	return &InterleavedReader{
		Mates: seq.Mates,
		r:     r,
	}
}

// ReadPair returns the next two records as a mate pair. A stream ending
// after an odd record is ErrPairCount.
func (r *InterleavedReader) ReadPair() (*seq.Seq, *seq.Seq, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	s1, err := r.r.Read()
	if err != nil {
		return nil, nil, r.fail(err)
	}
	s2, err := r.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, r.fail(fmt.Errorf("paired: interleaved stream ended after an unpaired record %q: %w", s1.ID, e.ErrPairCount))
	}
	if err != nil {
		return nil, nil, r.fail(err)
	}
	if r.Mates != nil && !r.Mates(s1.ID, s2.ID) {
		return nil, nil, r.fail(fmt.Errorf("paired: records %q and %q are not mates: %w", s1.ID, s2.ID, e.ErrPairName))
	}
	return s1, s2, nil
}

func (r *InterleavedReader) fail(err error) error {
	r.err = err
	return err
}

// Writer writes mate pairs to two single-end writers. Mate correspondence
// is not re-verified; it was checked at parse time.
type Writer struct {
	w1, w2 seq.Writer
}

// NewWriter returns a paired writer over w1 and w2.
func NewWriter(w1, w2 seq.Writer) *Writer {
	return &Writer{w1: w1, w2: w2}
}

// WritePair writes s1 to the first output and s2 to the second.
func (w *Writer) WritePair(s1, s2 *seq.Seq) (int, error) {
	n, err := w.w1.Write(s1)
	if err != nil {
		return n, err
	}
	m, err := w.w2.Write(s2)
	return n + m, err
}

// Flush flushes both outputs.
func (w *Writer) Flush() error {
	if err := w.w1.Flush(); err != nil {
		return err
	}
	return w.w2.Flush()
}

// InterleavedWriter writes mate pairs to one output in alternating order.
type InterleavedWriter struct {
	w seq.Writer
}

// NewInterleavedWriter returns an interleaving pair writer over w.
func NewInterleavedWriter(w seq.Writer) *InterleavedWriter {
	return &InterleavedWriter{w: w}
}

// WritePair writes s1 then s2.
func (w *InterleavedWriter) WritePair(s1, s2 *seq.Seq) (int, error) {
	n, err := w.w.Write(s1)
	if err != nil {
		return n, err
	}
	m, err := w.w.Write(s2)
	return n + m, err
}

// Flush flushes the output.
func (w *InterleavedWriter) Flush() error {
	return w.w.Flush()
}
