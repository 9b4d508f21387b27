// Package contains the sequence record type and interfaces shared by the
// fasta, fastq, multi and paired packages.
package seq

import (
	"bytes"

	"github.com/emollier/dnaio/scan"
)

// Format identifies the record framing of a stream. It is fixed per stream
// once detected and never changes mid-stream.
type Format int

const (
	FormatUnknown Format = iota
	FormatFasta
	FormatFastq
)

func (f Format) String() string {
	switch f {
	case FormatFasta:
		return "fasta"
	case FormatFastq:
		return "fastq"
	}
	return "unknown"
}

// Sentinel returns the header byte that starts a record in this format.
func (f Format) Sentinel() byte {
	if f == FormatFastq {
		return '@'
	}
	return '>'
}

// Seq is a single decoded sequence record. ID is the header text up to the
// first whitespace, Comment the remainder of the header (nil if absent).
// Qual is nil for FASTA records and has the same length as Seq otherwise.
type Seq struct {
	ID      []byte
	Comment []byte
	Seq     []byte
	Qual    []byte
}

func New(id []byte, comment []byte, seq []byte, qual []byte) *Seq {
	return &Seq{
		ID:      id,
		Comment: comment,
		Seq:     seq,
		Qual:    qual,
	}
}

// Header returns the full header text, ID and Comment joined by a space,
// without the leading sentinel byte.
func (s *Seq) Header() []byte {
	if len(s.Comment) == 0 {
		return s.ID
	}
	h := make([]byte, 0, len(s.ID)+1+len(s.Comment))
	h = append(h, s.ID...)
	h = append(h, ' ')
	h = append(h, s.Comment...)
	return h
}

// RevComp returns a copy of the record with the sequence
// reverse-complemented and the qualities reversed to match.
func (s *Seq) RevComp() *Seq {
	rc := &Seq{
		ID:      bytes.Clone(s.ID),
		Comment: bytes.Clone(s.Comment),
		Seq:     scan.RevComp(s.Seq),
	}
	if s.Qual != nil {
		q := make([]byte, len(s.Qual))
		for i, j := 0, len(s.Qual)-1; j >= 0; i, j = i+1, j-1 {
			q[i] = s.Qual[j]
		}
		rc.Qual = q
	}
	return rc
}

// Reader is the single-stream record source implemented by the fasta, fastq
// and multi readers. Read returns io.EOF after the last record.
type Reader interface {
	Read() (*Seq, error)
}

// Writer is the record sink implemented by the fasta and fastq writers.
type Writer interface {
	Write(s *Seq) (int, error)
	Flush() error
}

// PairReader yields records from two synchronized mate streams.
type PairReader interface {
	ReadPair() (*Seq, *Seq, error)
}

// MatePredicate reports whether two record IDs belong to the same fragment.
type MatePredicate func(id1, id2 []byte) bool

// Mates is the default MatePredicate: IDs are mates when they are equal, or
// equal after each drops a trailing "/1", "/2" or "/3" mate suffix.
func Mates(id1, id2 []byte) bool {
	return bytes.Equal(stripMate(id1), stripMate(id2))
}

func stripMate(id []byte) []byte {
	n := len(id)
	if n >= 2 && id[n-2] == '/' && id[n-1] >= '1' && id[n-1] <= '3' {
		return id[:n-2]
	}
	return id
}
