package fastq

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e "github.com/emollier/dnaio/errors"
	"github.com/emollier/dnaio/scan"
	"github.com/emollier/dnaio/seq"
)

func readAll(t *testing.T, r *Reader) []*seq.Seq {
	t.Helper()
	var out []*seq.Seq
	for {
		s, err := r.Read()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, s)
	}
}

func TestRead(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nACGT\n+\n!!!!\n@r2\nGGCA\n+\n####\n"))
	got := readAll(t, r)
	require.Len(t, got, 2)

	assert.Equal(t, "r1", string(got[0].ID))
	assert.Nil(t, got[0].Comment)
	assert.Equal(t, "ACGT", string(got[0].Seq))
	assert.Equal(t, "!!!!", string(got[0].Qual))

	assert.Equal(t, "r2", string(got[1].ID))
	assert.Equal(t, "GGCA", string(got[1].Seq))
	assert.Equal(t, "####", string(got[1].Qual))
}

func TestReadComment(t *testing.T) {
	r := NewReader(strings.NewReader("@r1 1:N:0:ATCACG\nAC\n+\n!!\n"))
	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", string(got[0].ID))
	assert.Equal(t, "1:N:0:ATCACG", string(got[0].Comment))
}

func TestReadCRLF(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\r\nACGT\r\n+\r\n!!!!\r\n"))
	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, "ACGT", string(got[0].Seq))
	assert.Equal(t, "!!!!", string(got[0].Qual))
}

// A quality line may start with '@' or '>'; record framing is line count,
// not sentinel scanning.
func TestReadQualitySentinelBytes(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nACGT\n+\n@>@>\n@r2\nGG\n+\n!!\n"))
	got := readAll(t, r)
	require.Len(t, got, 2)
	assert.Equal(t, "@>@>", string(got[0].Qual))
	assert.Equal(t, "r2", string(got[1].ID))
}

// The '+' line may repeat the header; it is ignored either way.
func TestReadRepeatedSeparatorHeader(t *testing.T) {
	r := NewReader(strings.NewReader("@r1 x\nAC\n+r1 x\n!!\n"))
	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", string(got[0].ID))
}

func TestReadNoFinalNewline(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nACGT\n+\n!!!!"))
	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, "!!!!", string(got[0].Qual))
}

func TestReadEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n", " \t\r\n"} {
		r := NewReader(strings.NewReader(in))
		got := readAll(t, r)
		assert.Empty(t, got, "input %q", in)
	}
}

func TestReadTruncated(t *testing.T) {
	for _, in := range []string{"@r1\nACGT\n+\n", "@r1\nACGT\n", "@r1\n", "@r1"} {
		r := NewReader(strings.NewReader(in))
		_, err := r.Read()
		assert.ErrorIs(t, err, e.ErrMalformed, "input %q", in)
	}
}

func TestReadWrongSentinels(t *testing.T) {
	r := NewReader(strings.NewReader(">r1\nACGT\n+\n!!!!\n"))
	_, err := r.Read()
	assert.ErrorIs(t, err, e.ErrMalformed)

	r = NewReader(strings.NewReader("@r1\nACGT\nplus\n!!!!\n"))
	_, err = r.Read()
	assert.ErrorIs(t, err, e.ErrMalformed)
}

func TestReadLengthMismatch(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nACGT\n+\n!!!\n"))
	_, err := r.Read()
	assert.ErrorIs(t, err, e.ErrLengthMismatch)
	assert.NotErrorIs(t, err, e.ErrInvalidContent)
}

func TestReadInvalidContent(t *testing.T) {
	// Sequence with a digit.
	r := NewReader(strings.NewReader("@r1\nAC9T\n+\n!!!!\n"))
	_, err := r.Read()
	assert.ErrorIs(t, err, e.ErrInvalidContent)

	// Quality byte below the encoding range (space = 32 < '!').
	r = NewReader(strings.NewReader("@r1\nACGT\n+\n!! !\n"))
	_, err = r.Read()
	assert.ErrorIs(t, err, e.ErrInvalidContent)
	assert.NotErrorIs(t, err, e.ErrMalformed)
}

func TestReadQualityBounds(t *testing.T) {
	// Sanger range upper bound '~' is accepted by default.
	r := NewReader(strings.NewReader("@r1\nAC\n+\n!~\n"))
	got := readAll(t, r)
	require.Len(t, got, 1)

	// A narrowed range rejects it.
	r = NewReader(strings.NewReader("@r1\nAC\n+\n!~\n"))
	r.QualMax = 41
	_, err := r.Read()
	assert.ErrorIs(t, err, e.ErrInvalidContent)

	// QualMax < QualMin disables the check entirely.
	r = NewReader(strings.NewReader("@r1\nAC\n+\n\x01\x02\n"))
	r.QualMin, r.QualMax = 1, 0
	got = readAll(t, r)
	require.Len(t, got, 1)
}

func TestReadStrictAlphabet(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nMKVL\n+\n!!!!\n"))
	r.Alphabet = scan.Nucleotide
	_, err := r.Read()
	assert.ErrorIs(t, err, e.ErrInvalidContent)
}

func TestErrorIsSticky(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nACGT\n+\n!!!\n@r2\nGG\n+\n!!\n"))
	_, err := r.Read()
	require.ErrorIs(t, err, e.ErrLengthMismatch)
	_, err2 := r.Read()
	assert.Equal(t, err, err2)
}

func TestResync(t *testing.T) {
	r := NewReader(strings.NewReader("@r1\nACGT\n+\n!!!\n@r2\nGG\n+\n!!\n"))
	_, err := r.Read()
	require.ErrorIs(t, err, e.ErrLengthMismatch)

	require.NoError(t, r.Resync())
	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, "r2", string(got[0].ID))
}

// A record much larger than the refill size is scanned incrementally, each
// refill resuming where the previous scan stopped.
func TestReadLongRecordSmallRefills(t *testing.T) {
	sq := strings.Repeat("ACGT", 600)
	qual := strings.Repeat("!", len(sq))
	in := "@long\n" + sq + "\n+\n" + qual + "\n@tail\nA\n+\n#\n"
	r := NewReaderSize(strings.NewReader(in), 1)

	s, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "long", string(s.ID))
	assert.Equal(t, sq, string(s.Seq))
	assert.Equal(t, qual, string(s.Qual))

	s, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, "tail", string(s.ID))

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChunkSizeIndependence(t *testing.T) {
	in := "@r1 c\nACGT\n+\n!!!!\n@r2\nGGCA\n+\n@@@@\n@r3\nT\n+\n~\n"
	want := func() []*seq.Seq {
		return readAll(t, NewReaderSize(strings.NewReader(in), 1<<20))
	}()
	for _, chunk := range []int{1, 2, 3, 5, 16, 64} {
		got := readAll(t, NewReaderSize(strings.NewReader(in), chunk))
		require.Len(t, got, len(want), "chunk size %d", chunk)
		for i := range want {
			assert.Equal(t, want[i], got[i], "chunk size %d record %d", chunk, i)
		}
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write(seq.New([]byte("r1"), nil, []byte("ACGT"), []byte("!!!!")))
	require.NoError(t, err)
	_, err = w.Write(seq.New([]byte("r2"), []byte("extra"), []byte("GG"), []byte("##")))
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	assert.Equal(t, "@r1\nACGT\n+\n!!!!\n@r2 extra\nGG\n+\n##\n", buf.String())
}

func TestWriteMissingQualities(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write(seq.New([]byte("r1"), nil, []byte("ACGT"), nil))
	assert.ErrorIs(t, err, e.ErrMissingQual)
}

func TestRoundTrip(t *testing.T) {
	recs := []*seq.Seq{
		seq.New([]byte("r1"), []byte("left mate"), []byte("ACGTN"), []byte("IIII#")),
		seq.New([]byte("r2"), nil, []byte("G"), []byte("!")),
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, s := range recs {
		_, err := w.Write(s)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())

	got := readAll(t, NewReader(&buf))
	require.Len(t, got, len(recs))
	for i, s := range recs {
		assert.Equal(t, string(s.ID), string(got[i].ID))
		assert.Equal(t, string(s.Comment), string(got[i].Comment))
		assert.Equal(t, string(s.Seq), string(got[i].Seq))
		assert.Equal(t, string(s.Qual), string(got[i].Qual))
	}
}

func BenchmarkRead(b *testing.B) {
	var in bytes.Buffer
	for i := 0; i < 1000; i++ {
		in.WriteString("@read_name_with_typical_length:1234:5678\n")
		in.WriteString(strings.Repeat("ACGT", 25) + "\n+\n" + strings.Repeat("I", 100) + "\n")
	}
	data := in.Bytes()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(bytes.NewReader(data))
		for {
			if _, err := r.Read(); err != nil {
				break
			}
		}
	}
}
