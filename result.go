package gramsearch

import (
	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/search"
)

// Match is one surviving search state resolved to text positions.
type Match struct {
	// Positions are the ascending PRG offsets where the query starts.
	Positions []uint64
	// Path lists the variant sites and alleles the match traverses, in
	// reverse text order.
	Path search.Path
	// SiteState tells whether the match starts inside an allele.
	SiteState search.SiteState
}

// Result holds the final frontier of a search.
type Result struct {
	Query    []prg.Symbol
	Frontier search.Frontier
	Matches  []Match
}

func newResult(idx *fmindex.Index, query []prg.Symbol, f search.Frontier) *Result {
	r := &Result{
		Query:    query,
		Frontier: f,
		Matches:  make([]Match, 0, f.Len()),
	}
	for _, st := range f.States() {
		r.Matches = append(r.Matches, Match{
			Positions: st.Positions(idx),
			Path:      st.Path.Clone(),
			SiteState: st.SiteState,
		})
	}
	return r
}

// Count returns the number of (position, path) occurrences found.
func (r *Result) Count() uint64 { return r.Frontier.Matches() }

// Found reports whether the query occurs at all.
func (r *Result) Found() bool { return !r.Frontier.Empty() }
