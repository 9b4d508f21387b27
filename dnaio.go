// Package dnaio reads and writes FASTA and FASTQ sequence files. The
// format readers live in the fasta, fastq, multi and paired packages; this
// package adds filename-level conveniences with transparent compression.
package dnaio

import (
	"fmt"
	"io"
	"strings"

	"github.com/fluhus/gostuff/aio"

	e "github.com/emollier/dnaio/errors"
	"github.com/emollier/dnaio/fasta"
	"github.com/emollier/dnaio/fastq"
	"github.com/emollier/dnaio/multi"
	"github.com/emollier/dnaio/paired"
	"github.com/emollier/dnaio/seq"
)

// Writer is a record sink that must be closed to flush its output.
type Writer interface {
	seq.Writer
	io.Closer
}

// Reader is a format-detecting record source over an open file.
type Reader struct {
	*multi.Reader
	c io.Closer
}

// Open opens the named sequence file for reading, decompressing by file
// extension, and detects FASTA versus FASTQ from the content.
func Open(name string) (*Reader, error) {
	f, err := aio.Open(name)
	if err != nil {
		return nil, err
	}
	return &Reader{
		Reader: multi.NewReader(f),
		c:      f,
	}, nil
}

// Close releases the underlying file. Reading may stop at any point; no
// work survives the close.
func (r *Reader) Close() error {
	return r.c.Close()
}

// PairReader is a lock-step paired reader over two open files.
type PairReader struct {
	*paired.Reader
	c1, c2 io.Closer
}

// OpenPair opens two mate files for paired reading.
func OpenPair(name1, name2 string) (*PairReader, error) {
	f1, err := aio.Open(name1)
	if err != nil {
		return nil, err
	}
	f2, err := aio.Open(name2)
	if err != nil {
		f1.Close()
		return nil, err
	}
	return &PairReader{
		Reader: paired.NewReader(multi.NewReader(f1), multi.NewReader(f2)),
		c1:     f1,
		c2:     f2,
	}, nil
}

// Close releases both underlying files.
func (r *PairReader) Close() error {
	err := r.c1.Close()
	if cerr := r.c2.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates the named sequence file for writing, compressing by file
// extension, with the record format chosen from the extension as well:
// .fasta/.fa/.fna/.ffn/.faa/.frn for FASTA, .fastq/.fq for FASTQ,
// compression suffixes stripped first.
func Create(name string) (Writer, error) {
	format := FormatFromName(name)
	if format == seq.FormatUnknown {
		return nil, fmt.Errorf("dnaio: cannot tell FASTA from FASTQ by the name %q: %w", name, e.ErrUnknownFormat)
	}
	return CreateFormat(name, format)
}

// CreateFormat creates the named sequence file writing the given format,
// regardless of its extension.
func CreateFormat(name string, format seq.Format) (Writer, error) {
	f, err := aio.Create(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case seq.FormatFastq:
		return fastq.NewWriter(f), nil
	case seq.FormatFasta:
		return fasta.NewWriter(f, 0), nil
	}
	f.Close()
	return nil, fmt.Errorf("dnaio: %q: %w", name, e.ErrUnknownFormat)
}

// FormatFromName guesses the record format from a file name. Compression
// suffixes are ignored. FormatUnknown when the extension is unrecognized.
func FormatFromName(name string) seq.Format {
	name = strings.ToLower(name)
	for _, z := range []string{".gz", ".bz2", ".zst", ".xz"} {
		if strings.HasSuffix(name, z) {
			name = strings.TrimSuffix(name, z)
			break
		}
	}
	switch {
	case hasSuffix(name, ".fasta", ".fa", ".fna", ".ffn", ".faa", ".frn", ".mpfa"):
		return seq.FormatFasta
	case hasSuffix(name, ".fastq", ".fq"):
		return seq.FormatFastq
	}
	return seq.FormatUnknown
}

func hasSuffix(name string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
