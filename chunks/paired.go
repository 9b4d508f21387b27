package chunks

import (
	"bytes"
	"fmt"
	"io"

	e "github.com/emollier/dnaio/errors"
)

// PairChunker cuts two mate streams into chunk pairs holding the same
// number of records, so paired chunks can be handed to the same worker.
type PairChunker struct {
	c1, c2 *Chunker
	err    error
}

// NewPairChunker returns a paired chunker producing chunk pairs of roughly
// size bytes per side.
func NewPairChunker(r1, r2 io.Reader, size int) *PairChunker {
	return &PairChunker{
		c1: NewChunker(r1, size),
		c2: NewChunker(r2, size),
	}
}

// Next returns the next record-aligned chunk pair, both sides covering the
// same record count, or io.EOF after the last one. One stream running out
// of records before the other is ErrPairCount.
func (p *PairChunker) Next() ([]byte, []byte, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	if err := p.c1.detect(); err != nil {
		return nil, nil, p.atEnd(err, p.c2)
	}
	if err := p.c2.detect(); err != nil && err != io.EOF {
		return nil, nil, p.fail(err)
	}
	for {
		k1, err := p.fill(p.c1)
		if err != nil {
			return nil, nil, p.fail(err)
		}
		k2, err := p.fill(p.c2)
		if err != nil {
			return nil, nil, p.fail(err)
		}
		k := k1
		if k2 < k {
			k = k2
		}
		if k > 0 {
			return p.cut(k)
		}
		// k is 0, so the side at EOF has no records left; reporting the
		// mismatch now keeps the longer side from being buffered whole.
		if p.c1.b.EOF() && k2 > 0 || p.c2.b.EOF() && k1 > 0 {
			return nil, nil, p.fail(fmt.Errorf("chunks: mate streams hold unequal record counts: %w", e.ErrPairCount))
		}
		if p.c1.b.EOF() && p.c2.b.EOF() {
			return nil, nil, p.fail(io.EOF)
		}
		// One side is short on complete records; pull more on both.
		if _, err := p.c1.b.Refill(); err != nil {
			return nil, nil, p.fail(err)
		}
		if _, err := p.c2.b.Refill(); err != nil {
			return nil, nil, p.fail(err)
		}
	}
}

// fill refills c toward its target size and returns the count of complete
// records in its window.
func (p *PairChunker) fill(c *Chunker) (int, error) {
	for c.b.Len() < c.size && !c.b.EOF() {
		if _, err := c.b.Refill(); err != nil {
			return 0, err
		}
	}
	return records(c.b.Window(), c.format, c.b.EOF()), nil
}

func (p *PairChunker) cut(k int) ([]byte, []byte, error) {
	b1 := p.take(p.c1, k)
	b2 := p.take(p.c2, k)
	return b1, b2, nil
}

// take consumes and returns the first k records of c's window. When the
// final record runs to end-of-input without a closing boundary, the cut
// extends to the window end.
func (p *PairChunker) take(c *Chunker, k int) []byte {
	w := c.b.Window()
	cut := cutRecords(w, c.format, k)
	if cut == 0 || (c.b.EOF() && records(w[cut:], c.format, true) == 0) {
		cut = len(w)
	}
	out := bytes.Clone(w[:cut])
	c.b.Consume(cut)
	return out
}

// atEnd distinguishes clean simultaneous end-of-input from one stream
// ending early during detection.
func (p *PairChunker) atEnd(err error, other *Chunker) error {
	if err != io.EOF {
		return p.fail(err)
	}
	if oerr := other.detect(); oerr == io.EOF {
		return p.fail(io.EOF)
	}
	return p.fail(fmt.Errorf("chunks: mate streams hold unequal record counts: %w", e.ErrPairCount))
}

func (p *PairChunker) fail(err error) error {
	p.err = err
	return err
}
