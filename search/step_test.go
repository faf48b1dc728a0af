package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/rank"
	"github.com/hupe1980/gramsearch/testutil"
)

func buildIndex(t *testing.T, text string) *fmindex.Index {
	t.Helper()
	x, err := fmindex.Build(prg.MustParse(text))
	require.NoError(t, err)
	return x
}

// rowAt returns the row whose suffix starts at text position pos.
func rowAt(t *testing.T, x *fmindex.Index, pos uint64) uint64 {
	t.Helper()
	for row := uint64(0); row < x.Len(); row++ {
		if x.Locate(row) == pos {
			return row
		}
	}
	t.Fatalf("no row for position %d", pos)
	return 0
}

func TestStep_NeverGrows(t *testing.T) {
	rng := testutil.NewRNG(3)
	for iter := 0; iter < 20; iter++ {
		p := rng.RandomPRG(testutil.PRGOptions{Sites: 5, MaxFlank: 4})
		x, err := fmindex.Build(p)
		require.NoError(t, err)
		ranks := rank.New(x)

		for j := 0; j < 50; j++ {
			l := uint64(rng.Intn(int(x.Len())))
			r := l + uint64(rng.Intn(int(x.Len()-l)+1))
			iv := Interval{Left: l, Right: r}
			for _, c := range prg.Bases {
				next := Step(c, iv, ranks, x)
				assert.LessOrEqual(t, next.Size(), iv.Size())
				if !next.Empty() {
					assert.GreaterOrEqual(t, next.Left, x.C(c))
					assert.LessOrEqual(t, next.Right, x.C(c+1))
				}
			}
		}
	}
}

func TestStep_NonBaseAndEmpty(t *testing.T) {
	x := buildIndex(t, "AC5G6T5TA")
	ranks := rank.New(x)
	assert.True(t, Step(5, Interval{Left: 0, Right: x.Len()}, ranks, x).Empty())
	assert.True(t, Step(prg.A, Interval{Left: 4, Right: 4}, ranks, x).Empty())

	// Every A in the text.
	iv := Step(prg.A, Interval{Left: 0, Right: x.Len()}, ranks, x)
	assert.Equal(t, uint64(2), iv.Size())
}

func TestSkip(t *testing.T) {
	x := buildIndex(t, "AC5G6T5TA")

	l, r, ok, err := Skip(x, 0, x.Len(), 5, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, x.C(5), l)
	assert.Equal(t, x.C(5)+2, r)

	_, _, ok, err = Skip(x, 0, 0, 5, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, _, err = Skip(x, 0, x.Len(), 5, 3)
	assert.ErrorIs(t, err, ErrMalformedIndex)
}

func TestCrossMarker_EnterAllAlleles(t *testing.T) {
	// A 5 C 6 G 6 T 6 5 A
	// 0 1 2 3 4 5 6 7 8 9
	x := buildIndex(t, "A5C6G6T6,5A")
	row := rowAt(t, x, 9)

	branches, err := CrossMarker(x, 5, Interval{Left: row, Right: row + 1})
	require.NoError(t, err)
	require.Len(t, branches, 4)

	wantEnds := []uint64{3, 5, 7, 8}
	for i, b := range branches {
		assert.True(t, b.Entering)
		assert.Equal(t, VariantSite{Site: 5, Allele: uint32(i + 1)}, b.Site)
		assert.Equal(t, uint64(1), b.Interval.Size())
		assert.Equal(t, wantEnds[i], x.Locate(b.Interval.Left))
	}
}

func TestCrossMarker_Leave(t *testing.T) {
	x := buildIndex(t, "A5C6G6T6,5A")
	open := rowAt(t, x, 1)

	// Leaving allele 3 (T at 6) crosses the allele marker at 5.
	row := rowAt(t, x, 6)
	branches, err := CrossMarker(x, 6, Interval{Left: row, Right: row + 1})
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.False(t, branches[0].Entering)
	assert.Equal(t, VariantSite{Site: 5, Allele: 3}, branches[0].Site)
	assert.Equal(t, Interval{Left: open, Right: open + 1}, branches[0].Interval)

	// Leaving allele 1 (C at 2) crosses the opening boundary itself.
	row = rowAt(t, x, 2)
	branches, err = CrossMarker(x, 5, Interval{Left: row, Right: row + 1})
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, VariantSite{Site: 5, Allele: 1}, branches[0].Site)
	assert.Equal(t, Interval{Left: open, Right: open + 1}, branches[0].Interval)

	// No row of the interval is preceded by the marker.
	row = rowAt(t, x, 0)
	branches, err = CrossMarker(x, 5, Interval{Left: row, Right: row + 1})
	require.NoError(t, err)
	assert.Empty(t, branches)
}

func TestCrossMarker_UnknownMarker(t *testing.T) {
	x := buildIndex(t, "AC5G6T5TA")
	_, err := CrossMarker(x, 9, Interval{Left: 0, Right: x.Len()})
	assert.ErrorIs(t, err, ErrMalformedIndex)
	_, err = CrossMarker(x, prg.A, Interval{Left: 0, Right: x.Len()})
	assert.ErrorIs(t, err, ErrMalformedIndex)
}

// shiftedIndex misreports the C table for one marker.
type shiftedIndex struct {
	*fmindex.Index
	marker prg.Symbol
}

func (s shiftedIndex) C(c prg.Symbol) uint64 {
	if c == s.marker+1 {
		return s.Index.C(c) + 1
	}
	return s.Index.C(c)
}

func TestSearch_MalformedIndex(t *testing.T) {
	x := buildIndex(t, "AC5G6T5TA")
	bad := shiftedIndex{Index: x, marker: 5}
	s := NewSearcher(bad, rank.New(x), Config{})

	_, err := s.Search(t.Context(), mustQuery(t, "GTA"))
	assert.ErrorIs(t, err, ErrMalformedIndex)
}
