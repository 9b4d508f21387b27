// Package scan provides the byte-level validation and transformation
// primitives behind the fasta and fastq parsers: alphabet membership,
// quality-range checking and reverse complement. The hot functions exist in
// two interchangeable engines, a scalar one and a word-at-a-time one, which
// must agree on every input.
package scan

import (
	"encoding/binary"
)

const (
	ones  = ^uint64(0) / 255 // 0x0101...01
	highs = ones * 0x80      // 0x8080...80
)

// Alphabet is a 256-entry membership set over byte values.
type Alphabet struct {
	mask [4]uint64
}

// NewAlphabet builds an alphabet accepting the given bytes. Letters are
// added in both cases.
func NewAlphabet(letters string) *Alphabet {
	a := &Alphabet{}
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		a.add(c)
		if c >= 'A' && c <= 'Z' {
			a.add(c + 'a' - 'A')
		} else if c >= 'a' && c <= 'z' {
			a.add(c - ('a' - 'A'))
		}
	}
	return a
}

func (a *Alphabet) add(c byte) {
	a.mask[c>>6] |= 1 << (c & 63)
}

// Contains reports whether c is a member of the alphabet.
func (a *Alphabet) Contains(c byte) bool {
	return a.mask[c>>6]>>(c&63)&1 != 0
}

func (a *Alphabet) bit(c byte) uint64 {
	return a.mask[c>>6] >> (c & 63) & 1
}

var (
	// Letters accepts any ASCII letter plus the gap and stop characters.
	// It is the default sequence alphabet: permissive enough for both
	// nucleotide and protein data, strict enough to reject binary garbage.
	Letters = NewAlphabet("ABCDEFGHIJKLMNOPQRSTUVWXYZ-.*")

	// Nucleotide accepts the IUPAC nucleotide codes including ambiguity
	// codes, plus the gap character.
	Nucleotide = NewAlphabet("ACGTUNRYSWKMBDHV-")

	// AminoAcid accepts the IUPAC amino acid codes including ambiguity
	// codes, plus gap and stop.
	AminoAcid = NewAlphabet("ACDEFGHIKLMNPQRSTVWYBJOUXZ-.*")
)

// engine is one implementation of the byte-scanning hot path. The wide
// engine processes eight bytes per step; the scalar engine is the portable
// reference both are tested against.
type engine interface {
	validSeq(a *Alphabet, p []byte) bool
	validQual(p []byte, lo, hi byte) bool
	allASCII(p []byte) bool
}

var active engine = wide{}

// ValidSeq reports whether every byte of p is a member of a. An empty slice
// is valid.
func ValidSeq(a *Alphabet, p []byte) bool {
	return active.validSeq(a, p)
}

// ValidQual reports whether every byte of p lies in [lo, hi]. Callers apply
// the encoding offset when computing the bounds. An empty slice is valid.
func ValidQual(p []byte, lo, hi byte) bool {
	return active.validQual(p, lo, hi)
}

// AllASCII reports whether no byte of p has the high bit set.
func AllASCII(p []byte) bool {
	return active.allASCII(p)
}

type scalar struct{}

func (scalar) validSeq(a *Alphabet, p []byte) bool {
	for _, c := range p {
		if !a.Contains(c) {
			return false
		}
	}
	return true
}

func (scalar) validQual(p []byte, lo, hi byte) bool {
	for _, c := range p {
		if c < lo || c > hi {
			return false
		}
	}
	return true
}

func (scalar) allASCII(p []byte) bool {
	for _, c := range p {
		if c&0x80 != 0 {
			return false
		}
	}
	return true
}

type wide struct{}

func (wide) validSeq(a *Alphabet, p []byte) bool {
	i := 0
	for ; i+8 <= len(p); i += 8 {
		all := a.bit(p[i]) & a.bit(p[i+1]) & a.bit(p[i+2]) & a.bit(p[i+3]) &
			a.bit(p[i+4]) & a.bit(p[i+5]) & a.bit(p[i+6]) & a.bit(p[i+7])
		if all == 0 {
			return false
		}
	}
	for ; i < len(p); i++ {
		if !a.Contains(p[i]) {
			return false
		}
	}
	return true
}

// validQual uses the below-n / above-n word tests; they require lo <= 128
// and hi <= 127, which every ASCII quality encoding satisfies.
func (wide) validQual(p []byte, lo, hi byte) bool {
	if lo > 128 || hi > 127 {
		return scalar{}.validQual(p, lo, hi)
	}
	i := 0
	for ; i+8 <= len(p); i += 8 {
		v := binary.LittleEndian.Uint64(p[i : i+8])
		if lo > 0 && (v-ones*uint64(lo))&^v&highs != 0 {
			return false
		}
		if ((v+ones*uint64(127-hi))|v)&highs != 0 {
			return false
		}
	}
	for ; i < len(p); i++ {
		if p[i] < lo || p[i] > hi {
			return false
		}
	}
	return true
}

// allASCII OR-accumulates whole words and checks the sign bits once at the
// end, so the loop body carries no branch.
func (wide) allASCII(p []byte) bool {
	var acc uint64
	i := 0
	for ; i+8 <= len(p); i += 8 {
		acc |= binary.LittleEndian.Uint64(p[i : i+8])
	}
	var tail byte
	for ; i < len(p); i++ {
		tail |= p[i]
	}
	return acc&highs == 0 && tail&0x80 == 0
}
