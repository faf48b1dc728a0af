package search

import "github.com/hupe1980/gramsearch/prg"

// Index is the full-text index the search runs on. Rows are suffix array
// positions of the PRG text followed by the terminator.
type Index interface {
	// Len returns the number of rows.
	Len() uint64
	// C returns the number of text symbols strictly smaller than s.
	C(s prg.Symbol) uint64
	// BWT returns the symbol preceding the suffix of row i.
	BWT(i uint64) prg.Symbol
	// Locate returns the text position of the suffix of row i.
	Locate(i uint64) uint64
	// RankMarker counts rows j < i whose BWT symbol is marker m.
	RankMarker(m prg.Symbol, i uint64) uint64
	// ForEachMarker visits rows in [l, r) whose BWT symbol is a marker,
	// ascending, until fn returns false.
	ForEachMarker(l, r uint64, fn func(row uint64, m prg.Symbol) bool)
	// AlleleRows counts rows in [l, r) whose suffix starts with an allele base.
	AlleleRows(l, r uint64) uint64
	// PRG returns the indexed graph.
	PRG() *prg.PRG
}
