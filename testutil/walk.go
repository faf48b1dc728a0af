package testutil

import (
	"fmt"
	"sort"

	"github.com/hupe1980/gramsearch/prg"
)

// Crossing is one (site, allele) pair a match traversed.
type Crossing struct {
	Site   prg.Symbol
	Allele uint32
}

// Occurrence is one match: the text position of its first base and the
// sites it crossed, ordered right to left (the order a backward search
// records them).
type Occurrence struct {
	Pos  uint64
	Path []Crossing
}

// Key renders the occurrence for set comparisons.
func (o Occurrence) Key() string { return fmt.Sprintf("%d:%v", o.Pos, o.Path) }

// Occurrences enumerates every match of query in p by walking the graph
// left to right from every base. The result is sorted by position, then
// path, and contains no duplicates.
func Occurrences(p *prg.PRG, query []prg.Symbol) []Occurrence {
	seen := make(map[string]bool)
	var out []Occurrence
	for pos, s := range p.Symbols() {
		if !s.IsBase() {
			continue
		}
		for _, o := range walkFrom(p, pos, query) {
			if k := o.Key(); !seen[k] {
				seen[k] = true
				out = append(out, o)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos != out[j].Pos {
			return out[i].Pos < out[j].Pos
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Replay reports whether query can be spelled starting at text position
// pos while crossing exactly the sites of path (right to left order).
func Replay(p *prg.PRG, pos uint64, path []Crossing, query []prg.Symbol) bool {
	if pos >= uint64(p.Len()) {
		return false
	}
	want := Occurrence{Pos: pos, Path: path}.Key()
	for _, o := range walkFrom(p, int(pos), query) {
		if o.Key() == want {
			return true
		}
	}
	return false
}

func walkFrom(p *prg.PRG, start int, query []prg.Symbol) []Occurrence {
	var out []Occurrence
	var step func(pos, qi int, crossed []Crossing, inside *Crossing)
	step = func(pos, qi int, crossed []Crossing, inside *Crossing) {
		if qi == len(query) {
			out = append(out, Occurrence{Pos: uint64(start), Path: reversed(crossed)})
			return
		}
		if pos >= p.Len() {
			return
		}
		s := p.At(pos)
		if s.IsBase() {
			if s != query[qi] {
				return
			}
			if inside == nil {
				if site, allele, ok := p.AlleleAt(pos); ok {
					inside = &Crossing{Site: site, Allele: allele}
				}
			}
			step(pos+1, qi+1, crossed, inside)
			return
		}

		st, _ := p.Site(s)
		if s.IsBoundary() && pos == st.Start {
			for k, a := range st.Alleles {
				c := Crossing{Site: st.ID, Allele: uint32(k + 1)}
				step(a.Start, qi, appendCrossing(crossed, c), &c)
			}
			return
		}

		// Allele marker or closing boundary: the current allele ends.
		if inside != nil {
			crossed = appendCrossing(crossed, *inside)
		}
		step(st.End+1, qi, crossed, nil)
	}
	step(start, 0, nil, nil)
	return out
}

func appendCrossing(crossed []Crossing, c Crossing) []Crossing {
	if n := len(crossed); n > 0 && crossed[n-1] == c {
		return crossed
	}
	out := make([]Crossing, len(crossed), len(crossed)+1)
	copy(out, crossed)
	return append(out, c)
}

func reversed(in []Crossing) []Crossing {
	if len(in) == 0 {
		return nil
	}
	out := make([]Crossing, len(in))
	for i, c := range in {
		out[len(in)-1-i] = c
	}
	return out
}
