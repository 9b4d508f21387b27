// Package to read and auto-detect format of fasta & fastq files
package multi

import (
	"fmt"
	"io"

	"github.com/emollier/dnaio/buffer"
	e "github.com/emollier/dnaio/errors"
	"github.com/emollier/dnaio/fasta"
	"github.com/emollier/dnaio/fastq"
	"github.com/emollier/dnaio/seq"
)

// Reader detects the stream format from the first non-whitespace byte
// ('>' for FASTA, '@' for FASTQ) and delegates to the matching format
// reader. The format is fixed for the life of the stream; a later header
// not matching the established sentinel is a malformed record, never a
// format switch.
type Reader struct {
	b      *buffer.Buffer
	r      seq.Reader
	format seq.Format
}

// NewReader returns an auto-detecting reader using f.
func NewReader(f io.Reader) *Reader {
	return NewReaderSize(f, 0)
}

// NewReaderSize returns an auto-detecting reader with an explicit refill
// size.
func NewReaderSize(f io.Reader, chunkSize int) *Reader {
	return &Reader{
		b: buffer.New(f, chunkSize),
	}
}

// DetermineFormat probes the stream and fixes the record format. It is
// called implicitly by the first Read. Whitespace-only input remains
// FormatUnknown with no error; reads then report io.EOF.
func (r *Reader) DetermineFormat() error {
	if r.r != nil {
		return nil
	}
	if err := r.b.SkipSpace(); err != nil {
		return err
	}
	if r.b.Len() == 0 {
		return nil
	}
	switch r.b.Window()[0] {
	case '>':
		r.format = seq.FormatFasta
		r.r = fasta.NewBufferReader(r.b)
	case '@':
		r.format = seq.FormatFastq
		r.r = fastq.NewBufferReader(r.b)
	default:
		return fmt.Errorf("multi: input starts with %q, want '>' or '@': %w", r.b.Window()[0], e.ErrUnknownFormat)
	}
	return nil
}

// Format returns the detected format, FormatUnknown before the first read
// of a non-empty stream.
func (r *Reader) Format() seq.Format {
	return r.format
}

// Read returns the next sequence record, detecting the format on first use.
func (r *Reader) Read() (*seq.Seq, error) {
	if r.r == nil {
		if err := r.DetermineFormat(); err != nil {
			return nil, err
		}
		if r.r == nil {
			return nil, io.EOF
		}
	}
	return r.r.Read()
}

// Format serializes s in the detected format on w.
func (r *Reader) FormatSeq(s *seq.Seq, w io.Writer) (int, error) {
	switch r.format {
	case seq.FormatFastq:
		return fastq.Format(s, w)
	case seq.FormatFasta:
		return fasta.Format(s, w, 0)
	}
	return 0, e.ErrUnknownFormat
}
