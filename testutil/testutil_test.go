package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gramsearch/prg"
)

func query(t *testing.T, s string) []prg.Symbol {
	t.Helper()
	out := make([]prg.Symbol, len(s))
	for i := range s {
		c, ok := prg.BaseFromByte(s[i])
		require.True(t, ok)
		out[i] = c
	}
	return out
}

func TestOccurrences_SingleSite(t *testing.T) {
	p := prg.MustParse("AC5G6T5TA")

	got := Occurrences(p, query(t, "GTA"))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].Pos)
	assert.Equal(t, []Crossing{{Site: 5, Allele: 1}}, got[0].Path)

	got = Occurrences(p, query(t, "CTT"))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].Pos)
	assert.Equal(t, []Crossing{{Site: 5, Allele: 2}}, got[0].Path)

	assert.Empty(t, Occurrences(p, query(t, "CGA")))
}

func TestOccurrences_PathIsRightToLeft(t *testing.T) {
	p := prg.MustParse("AC5G6T5TA7C8G7GT")
	got := Occurrences(p, query(t, "TTAGG"))
	require.Len(t, got, 1)
	assert.Equal(t, []Crossing{{Site: 7, Allele: 2}, {Site: 5, Allele: 2}}, got[0].Path)
}

func TestOccurrences_EmptyAllele(t *testing.T) {
	p := prg.MustParse("A5C6,5G")
	got := Occurrences(p, query(t, "AG"))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(0), got[0].Pos)
	assert.Equal(t, []Crossing{{Site: 5, Allele: 2}}, got[0].Path)
}

func TestOccurrences_WithinAllele(t *testing.T) {
	p := prg.MustParse("A5CGT6A5")
	got := Occurrences(p, query(t, "GT"))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].Pos)
	assert.Nil(t, got[0].Path)
}

func TestReplay(t *testing.T) {
	p := prg.MustParse("AC5G6T5TA")
	q := query(t, "GTA")
	assert.True(t, Replay(p, 3, []Crossing{{Site: 5, Allele: 1}}, q))
	assert.False(t, Replay(p, 3, nil, q))
	assert.False(t, Replay(p, 5, []Crossing{{Site: 5, Allele: 1}}, q))
	assert.False(t, Replay(p, 100, nil, q))
}

func TestRandomPRG_WellFormed(t *testing.T) {
	rng := NewRNG(4711)
	for i := 0; i < 50; i++ {
		p := rng.RandomPRG(PRGOptions{Sites: 4, MaxFlank: 3})
		assert.Equal(t, 4, p.NumSites())
		q, err := prg.Parse(p.String())
		require.NoError(t, err)
		assert.Equal(t, p.Symbols(), q.Symbols())
	}
}

func TestSampleQuery_IsSpelled(t *testing.T) {
	rng := NewRNG(7)
	for i := 0; i < 50; i++ {
		p := rng.RandomPRG(PRGOptions{Sites: 3, MaxFlank: 2})
		q := rng.SampleQuery(p, 5)
		if len(q) == 0 {
			continue
		}
		assert.NotEmpty(t, Occurrences(p, q), "query %v on %s", q, p)
	}
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Bases(16)
	rng.Reset()
	assert.Equal(t, a, rng.Bases(16))
	assert.Equal(t, int64(4711), rng.Seed())
}
