// Package contains named error values for common sequence I/O failures
package errors

import (
	"errors"
)

var (
	// ErrMalformed indicates a structural violation: a header line with the
	// wrong sentinel, a FASTQ separator line not starting with '+', or a
	// record truncated by end-of-input.
	ErrMalformed = errors.New("malformed record")

	// ErrInvalidContent indicates a structurally well-formed record whose
	// sequence or quality bytes fail validation.
	ErrInvalidContent = errors.New("invalid record content")

	// ErrLengthMismatch indicates a FASTQ record whose sequence and quality
	// lines have different lengths.
	ErrLengthMismatch = errors.New("sequence and quality length mismatch")

	// ErrPairCount indicates that one mate stream ended while the other
	// still holds records.
	ErrPairCount = errors.New("record count mismatch between mate files")

	// ErrPairName indicates two mate records whose names do not correspond.
	ErrPairName = errors.New("record name mismatch between mates")

	// ErrMissingQual indicates an attempt to write a record without
	// qualities in FASTQ format.
	ErrMissingQual = errors.New("record has no qualities")

	// ErrUnknownFormat indicates input that starts with neither a FASTA nor
	// a FASTQ header sentinel.
	ErrUnknownFormat = errors.New("unknown sequence format")
)
