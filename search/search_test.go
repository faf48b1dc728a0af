package search

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/rank"
	"github.com/hupe1980/gramsearch/testutil"
)

func newTestSearcher(t testing.TB, text string, cfg Config) *Searcher {
	t.Helper()
	x, err := fmindex.Build(prg.MustParse(text))
	require.NoError(t, err)
	return NewSearcher(x, rank.New(x, rank.WithStride(64)), cfg)
}

func mustQuery(t testing.TB, q string) []prg.Symbol {
	t.Helper()
	syms, err := ParseQuery(q)
	require.NoError(t, err)
	return syms
}

func search(t testing.TB, s *Searcher, q string) Frontier {
	t.Helper()
	f, err := s.Search(context.Background(), mustQuery(t, q))
	require.NoError(t, err)
	return f
}

// occurrences flattens a frontier into (position, path) pairs.
func occurrences(idx Index, f Frontier) []testutil.Occurrence {
	var out []testutil.Occurrence
	for _, st := range f.States() {
		var path []testutil.Crossing
		for _, v := range st.Path {
			path = append(path, testutil.Crossing{Site: v.Site, Allele: v.Allele})
		}
		for _, pos := range st.Positions(idx) {
			out = append(out, testutil.Occurrence{Pos: pos, Path: path})
		}
	}
	return out
}

func keySet(occs []testutil.Occurrence) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, o := range occs {
		if k := o.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func TestSearch_ReferenceOnly(t *testing.T) {
	s := newTestSearcher(t, "ACGTAC5G6T5TTGCA", Config{})
	f := search(t, s, "TTGCA")

	require.Equal(t, 1, f.Len())
	st := f.At(0)
	assert.Equal(t, OutsideVariantSite, st.SiteState)
	assert.Empty(t, st.Path)
	assert.Equal(t, []uint64{11}, st.Positions(s.Index()))
}

func TestSearch_SingleAllele(t *testing.T) {
	s := newTestSearcher(t, "AC5G6T5TA", Config{})
	f := search(t, s, "GTA")

	require.Equal(t, 1, f.Len())
	st := f.At(0)
	assert.Equal(t, Path{{Site: 5, Allele: 1}}, st.Path)
	assert.Equal(t, WithinVariantSite, st.SiteState)
	assert.Equal(t, []uint64{3}, st.Positions(s.Index()))

	cached, ok := st.Cached.Get()
	require.True(t, ok)
	assert.Equal(t, VariantSite{Site: 5, Allele: 1}, cached)
}

func TestSearch_BothAlleles(t *testing.T) {
	s := newTestSearcher(t, "CC5AG6TG5GGA", Config{})
	f := search(t, s, "GGGA")

	require.Equal(t, 2, f.Len())
	var paths []Path
	for _, st := range f.States() {
		paths = append(paths, st.Path)
	}
	assert.ElementsMatch(t, []Path{
		{{Site: 5, Allele: 1}},
		{{Site: 5, Allele: 2}},
	}, paths)
}

func TestSearch_NoMatch(t *testing.T) {
	s := newTestSearcher(t, "AC5G6T5TA", Config{})
	for _, q := range []string{"CCCC", "GTT", "AAAAAAAAAAAA"} {
		assert.True(t, search(t, s, q).Empty(), q)
	}
}

func TestSearch_TwoSites(t *testing.T) {
	s := newTestSearcher(t, "AC5G6T5TA7C8G7GT", Config{})
	f := search(t, s, "TTAGG")

	require.Equal(t, 1, f.Len())
	assert.Equal(t, Path{{Site: 7, Allele: 2}, {Site: 5, Allele: 2}}, f.At(0).Path)
	assert.Equal(t, []uint64{5}, f.At(0).Positions(s.Index()))
}

func TestSearch_EmptyAllele(t *testing.T) {
	s := newTestSearcher(t, "A5C6,5G", Config{})
	f := search(t, s, "AG")

	require.Equal(t, 1, f.Len())
	assert.Equal(t, Path{{Site: 5, Allele: 2}}, f.At(0).Path)
	assert.Equal(t, OutsideVariantSite, f.At(0).SiteState)
	assert.Equal(t, []uint64{0}, f.At(0).Positions(s.Index()))
}

func TestSearch_AdjacentSites(t *testing.T) {
	s := newTestSearcher(t, "5A6C5,7G8T7", Config{})
	f := search(t, s, "CT")

	require.Equal(t, 1, f.Len())
	assert.Equal(t, Path{{Site: 7, Allele: 2}, {Site: 5, Allele: 2}}, f.At(0).Path)
}

func TestSearch_WithinAllele(t *testing.T) {
	s := newTestSearcher(t, "A5CGT6A5", Config{})
	f := search(t, s, "GT")

	require.Equal(t, 1, f.Len())
	st := f.At(0)
	assert.Empty(t, st.Path)
	assert.Equal(t, WithinVariantSite, st.SiteState)
	cached, ok := st.Cached.Get()
	require.True(t, ok)
	assert.Equal(t, VariantSite{Site: 5, Allele: 1}, cached)
}

func TestSearch_MixedClassification(t *testing.T) {
	// "C" occurs in the reference and inside allele 1.
	s := newTestSearcher(t, "AC5C6G5T", Config{})
	f := search(t, s, "C")

	require.Equal(t, 1, f.Len())
	assert.Equal(t, UnknownSiteState, f.At(0).SiteState)
	assert.Equal(t, uint64(2), f.At(0).Interval.Size())
}

func TestSearch_InvalidQuery(t *testing.T) {
	s := newTestSearcher(t, "AC5G6T5TA", Config{})

	_, err := s.Search(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = s.Search(context.Background(), []prg.Symbol{prg.A, 5, prg.C})
	var ibe *InvalidBaseError
	require.ErrorAs(t, err, &ibe)
	assert.Equal(t, 1, ibe.Pos)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseQuery("ACNT")
	require.ErrorAs(t, err, &ibe)
	assert.Equal(t, 2, ibe.Pos)
	assert.Equal(t, byte('N'), ibe.Char)

	_, err = ParseQuery("")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSearch_BudgetExceeded(t *testing.T) {
	s := newTestSearcher(t, "CC5AG6TG5GGA", Config{MaxFrontier: 1})
	_, err := s.Search(context.Background(), mustQuery(t, "GGGA"))
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	s = newTestSearcher(t, "CC5AG6TG5GGA", Config{MaxFrontier: 2})
	f, err := s.Search(context.Background(), mustQuery(t, "GGGA"))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestSearch_ContextCanceled(t *testing.T) {
	s := newTestSearcher(t, "AC5G6T5TA", Config{Workers: 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, mustQuery(t, "GTA"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearch_Idempotent(t *testing.T) {
	s := newTestSearcher(t, "AC5G6T5TA7C8G7GT", Config{Workers: 3})
	a := search(t, s, "TA")
	b := search(t, s, "TA")
	assert.True(t, a.SameStates(b))
}

func TestSearch_MatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(20240611)
	for iter := 0; iter < 200; iter++ {
		p := rng.RandomPRG(testutil.PRGOptions{
			Sites:        rng.Intn(6),
			MaxFlank:     rng.Intn(4),
			MaxAlleles:   4,
			MaxAlleleLen: 3,
		})
		x, err := fmindex.Build(p)
		require.NoError(t, err)
		s := NewSearcher(x, rank.New(x), Config{})

		for j := 0; j < 10; j++ {
			var q []prg.Symbol
			if j%3 == 0 {
				q = rng.Bases(1 + rng.Intn(4))
			} else {
				q = rng.SampleQuery(p, 1+rng.Intn(8))
			}
			if len(q) == 0 {
				continue
			}

			f, err := s.Search(context.Background(), q)
			require.NoError(t, err)

			want := keySet(testutil.Occurrences(p, q))
			got := keySet(occurrences(x, f))
			require.Equal(t, want, got, "prg %s query %v", p, q)

			for _, st := range f.States() {
				require.False(t, st.Interval.Empty())
				require.False(t, st.Invalid())
			}
		}
	}
}

func TestSearch_ReplayPaths(t *testing.T) {
	rng := testutil.NewRNG(99)
	for iter := 0; iter < 50; iter++ {
		p := rng.RandomPRG(testutil.PRGOptions{Sites: 4, MaxFlank: 2})
		x, err := fmindex.Build(p)
		require.NoError(t, err)
		s := NewSearcher(x, rank.New(x), Config{})

		q := rng.SampleQuery(p, 6)
		if len(q) == 0 {
			continue
		}
		f, err := s.Search(context.Background(), q)
		require.NoError(t, err)
		require.False(t, f.Empty(), "sampled query must match")

		for _, o := range occurrences(x, f) {
			assert.True(t, testutil.Replay(p, o.Pos, o.Path, q), "replay %s of %v on %s", o.Key(), q, p)
		}
	}
}

func TestSearch_ParallelMatchesSequential(t *testing.T) {
	rng := testutil.NewRNG(5)
	for iter := 0; iter < 30; iter++ {
		p := rng.RandomPRG(testutil.PRGOptions{Sites: 8, MaxFlank: 1, MaxAlleles: 4})
		x, err := fmindex.Build(p)
		require.NoError(t, err)
		ranks := rank.New(x)
		seq := NewSearcher(x, ranks, Config{})
		par := NewSearcher(x, ranks, Config{Workers: 4})

		q := rng.SampleQuery(p, 7)
		if len(q) == 0 {
			continue
		}
		a, err := seq.Search(context.Background(), q)
		require.NoError(t, err)
		b, err := par.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, a.States(), b.States())
	}
}

// locateCounter counts Locate calls on the wrapped index.
type locateCounter struct {
	*fmindex.Index
	calls int
}

func (l *locateCounter) Locate(i uint64) uint64 {
	l.calls++
	return l.Index.Locate(i)
}

func TestClassify_CommonAllele(t *testing.T) {
	t.Run("interval wider than longest allele", func(t *testing.T) {
		x := buildIndex(t, "A5GG6GG5T")
		idx := &locateCounter{Index: x}
		s := NewSearcher(idx, rank.New(x), Config{})

		st := State{Interval: Interval{Left: x.C(prg.G), Right: x.C(prg.T)}}
		require.Equal(t, uint64(4), st.Interval.Size())
		s.classify(&st)

		assert.Equal(t, WithinVariantSite, st.SiteState)
		_, ok := st.Cached.Get()
		assert.False(t, ok)
		assert.Zero(t, idx.calls)
	})

	t.Run("resolved once", func(t *testing.T) {
		x := buildIndex(t, "A5CGT6A5")
		idx := &locateCounter{Index: x}
		s := NewSearcher(idx, rank.New(x), Config{})

		st := State{Interval: Interval{Left: x.C(prg.G), Right: x.C(prg.T)}}
		s.classify(&st)
		cached, ok := st.Cached.Get()
		require.True(t, ok)
		assert.Equal(t, VariantSite{Site: 5, Allele: 1}, cached)
		assert.Equal(t, 1, idx.calls)

		s.classify(&st)
		assert.Equal(t, 1, idx.calls)
	})
}
