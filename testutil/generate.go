package testutil

import (
	"github.com/hupe1980/gramsearch/prg"
)

// PRGOptions shapes RandomPRG output. Zero fields take small defaults.
type PRGOptions struct {
	Sites        int // number of variant sites
	MaxFlank     int // invariant bases before each site and at the end; 0 allows adjacent sites
	MaxAlleles   int // at least 2
	MaxAlleleLen int // alleles may be empty
}

func (o *PRGOptions) defaults() {
	if o.MaxFlank < 0 {
		o.MaxFlank = 0
	}
	if o.MaxAlleles < 2 {
		o.MaxAlleles = 3
	}
	if o.MaxAlleleLen <= 0 {
		o.MaxAlleleLen = 3
	}
}

// RandomPRG returns a well-formed random PRG.
func (r *RNG) RandomPRG(opts PRGOptions) *prg.PRG {
	opts.defaults()

	var syms []prg.Symbol
	flank := func() {
		if opts.MaxFlank == 0 {
			return
		}
		syms = append(syms, r.Bases(r.Intn(opts.MaxFlank+1))...)
	}
	for k := 0; k < opts.Sites; k++ {
		flank()
		b, a := prg.SiteMarkers(k)
		syms = append(syms, b)
		n := 2 + r.Intn(opts.MaxAlleles-1)
		for j := 0; j < n; j++ {
			if j > 0 {
				syms = append(syms, a)
			}
			syms = append(syms, r.Bases(r.Intn(opts.MaxAlleleLen+1))...)
		}
		syms = append(syms, b)
	}
	flank()

	p, err := prg.FromSymbols(syms)
	if err != nil {
		panic(err)
	}
	return p
}

// SampleQuery spells a random walk of up to length bases through p,
// starting at a random base and choosing alleles at random. It returns nil
// when p has no bases.
func (r *RNG) SampleQuery(p *prg.PRG, length int) []prg.Symbol {
	var starts []int
	for pos, s := range p.Symbols() {
		if s.IsBase() {
			starts = append(starts, pos)
		}
	}
	if len(starts) == 0 || length <= 0 {
		return nil
	}

	pos := starts[r.Intn(len(starts))]
	out := make([]prg.Symbol, 0, length)
	for len(out) < length && pos < p.Len() {
		s := p.At(pos)
		switch {
		case s.IsBase():
			out = append(out, s)
			pos++
		case s.IsBoundary() && isOpening(p, pos):
			st, _ := p.Site(s)
			pos = st.Alleles[r.Intn(len(st.Alleles))].Start
		default:
			st, _ := p.Site(s)
			pos = st.End + 1
		}
	}
	return out
}

func isOpening(p *prg.PRG, pos int) bool {
	st, ok := p.Site(p.At(pos))
	return ok && st.Start == pos
}
