package fmindex

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/gramsearch/prg"
)

// MaxLen is the largest PRG (terminator excluded) that can be indexed.
const MaxLen = math.MaxInt32 - 1

// ErrTooLarge is returned by Build for PRGs longer than MaxLen.
var ErrTooLarge = errors.New("fmindex: prg too large")

// Index is an FM index over a PRG followed by the terminator.
//
// Row i of the index is the i-th suffix in lexicographic order. The index
// keeps the full suffix array, so Locate is a single lookup.
type Index struct {
	prg  *prg.PRG
	text []prg.Symbol // PRG text plus terminator
	sa   []uint32
	bwt  []prg.Symbol
	c    []uint64 // c[s] = number of text symbols smaller than s; len maxSym+2

	markers    []*roaring.Bitmap // per marker (offset by FirstMarker): rows whose BWT symbol is it
	markerRows *roaring.Bitmap   // rows whose BWT symbol is any marker
	alleleRows *roaring.Bitmap   // rows whose suffix starts inside an allele
}

// Build indexes p.
func Build(p *prg.PRG) (*Index, error) {
	if p.Len() > MaxLen {
		return nil, fmt.Errorf("%w: %d symbols", ErrTooLarge, p.Len())
	}

	text := make([]uint32, p.Len()+1)
	for i, s := range p.Symbols() {
		text[i] = uint32(s)
	}
	text[p.Len()] = uint32(prg.Terminator)

	sa32 := buildSuffixArray(text, int(p.MaxSymbol())+1)
	sa := make([]uint32, len(sa32))
	for i, v := range sa32 {
		sa[i] = uint32(v)
	}
	return newIndex(p, sa), nil
}

// fromSuffixArray rebuilds an index from a stored suffix array after
// checking that it is a permutation of the text positions.
func fromSuffixArray(p *prg.PRG, sa []uint32) (*Index, error) {
	n := uint(p.Len() + 1)
	if uint(len(sa)) != n {
		return nil, fmt.Errorf("%w: suffix array has %d entries, want %d", ErrCorrupt, len(sa), n)
	}
	seen := bitset.New(n)
	for _, v := range sa {
		if uint(v) >= n || seen.Test(uint(v)) {
			return nil, fmt.Errorf("%w: suffix array is not a permutation", ErrCorrupt)
		}
		seen.Set(uint(v))
	}
	if sa[0] != uint32(p.Len()) {
		return nil, fmt.Errorf("%w: first row is not the terminator", ErrCorrupt)
	}
	return newIndex(p, sa), nil
}

func newIndex(p *prg.PRG, sa []uint32) *Index {
	n := p.Len() + 1
	text := make([]prg.Symbol, n)
	copy(text, p.Symbols())
	text[n-1] = prg.Terminator

	maxSym := p.MaxSymbol()
	x := &Index{
		prg:        p,
		text:       text,
		sa:         sa,
		bwt:        make([]prg.Symbol, n),
		c:          make([]uint64, int(maxSym)+2),
		markerRows: roaring.New(),
		alleleRows: roaring.New(),
	}

	counts := make([]uint64, int(maxSym)+1)
	var (
		markerRows []uint32
		alleleRows []uint32
		perMarker  [][]uint32
	)
	if maxSym >= prg.FirstMarker {
		perMarker = make([][]uint32, maxSym-prg.FirstMarker+1)
	}

	for row, pos := range sa {
		var s prg.Symbol
		if pos == 0 {
			s = text[n-1]
		} else {
			s = text[pos-1]
		}
		x.bwt[row] = s
		counts[text[pos]]++

		if s.IsMarker() {
			markerRows = append(markerRows, uint32(row))
			perMarker[s-prg.FirstMarker] = append(perMarker[s-prg.FirstMarker], uint32(row))
		}
		if _, _, ok := p.AlleleAt(int(pos)); ok {
			alleleRows = append(alleleRows, uint32(row))
		}
	}

	var sum uint64
	for s, cnt := range counts {
		x.c[s] = sum
		sum += cnt
	}
	x.c[len(counts)] = sum

	x.markerRows.AddMany(markerRows)
	x.alleleRows.AddMany(alleleRows)
	x.markers = make([]*roaring.Bitmap, len(perMarker))
	for i, rows := range perMarker {
		if len(rows) == 0 {
			continue
		}
		bm := roaring.New()
		bm.AddMany(rows)
		bm.RunOptimize()
		x.markers[i] = bm
	}
	x.markerRows.RunOptimize()
	x.alleleRows.RunOptimize()
	return x
}

// Len returns the number of rows (PRG length plus the terminator).
func (x *Index) Len() uint64 { return uint64(len(x.sa)) }

// PRG returns the indexed graph.
func (x *Index) PRG() *prg.PRG { return x.prg }

// C returns the number of text symbols strictly smaller than s.
func (x *Index) C(s prg.Symbol) uint64 {
	if int(s) >= len(x.c) {
		return x.Len()
	}
	return x.c[s]
}

// BWT returns the symbol preceding the suffix of row i.
func (x *Index) BWT(i uint64) prg.Symbol { return x.bwt[i] }

// Locate returns the text position of the suffix of row i.
func (x *Index) Locate(i uint64) uint64 { return uint64(x.sa[i]) }

// Text returns the symbol at text position pos; the last position holds the
// terminator.
func (x *Index) Text(pos uint64) prg.Symbol { return x.text[pos] }

// RankMarker counts the rows j < i whose BWT symbol is marker m.
func (x *Index) RankMarker(m prg.Symbol, i uint64) uint64 {
	bm := x.markerBitmap(m)
	if bm == nil || i == 0 {
		return 0
	}
	return bm.Rank(uint32(i - 1))
}

// MarkerCount returns the number of rows whose BWT symbol is marker m.
func (x *Index) MarkerCount(m prg.Symbol) uint64 {
	bm := x.markerBitmap(m)
	if bm == nil {
		return 0
	}
	return bm.GetCardinality()
}

func (x *Index) markerBitmap(m prg.Symbol) *roaring.Bitmap {
	if !m.IsMarker() || int(m-prg.FirstMarker) >= len(x.markers) {
		return nil
	}
	return x.markers[m-prg.FirstMarker]
}

// ForEachMarker calls fn for every row in [l, r) whose BWT symbol is a
// marker, in ascending row order, until fn returns false.
func (x *Index) ForEachMarker(l, r uint64, fn func(row uint64, m prg.Symbol) bool) {
	if l >= r {
		return
	}
	it := x.markerRows.Iterator()
	it.AdvanceIfNeeded(uint32(l))
	for it.HasNext() {
		row := uint64(it.Next())
		if row >= r {
			return
		}
		if !fn(row, x.bwt[row]) {
			return
		}
	}
}

// AlleleRows counts the rows in [l, r) whose suffix starts with an allele
// base.
func (x *Index) AlleleRows(l, r uint64) uint64 {
	if l >= r {
		return 0
	}
	n := x.alleleRows.Rank(uint32(r - 1))
	if l > 0 {
		n -= x.alleleRows.Rank(uint32(l - 1))
	}
	return n
}

// SizeInBytes estimates the memory held by the index.
func (x *Index) SizeInBytes() uint64 {
	size := uint64(len(x.text))*4 + uint64(len(x.sa))*4 + uint64(len(x.bwt))*4 + uint64(len(x.c))*8
	size += x.markerRows.GetSizeInBytes() + x.alleleRows.GetSizeInBytes()
	for _, bm := range x.markers {
		if bm != nil {
			size += bm.GetSizeInBytes()
		}
	}
	return size
}
