package prg

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedPRG is returned when a symbol sequence does not describe a
// well-formed set of non-nested variant sites.
var ErrMalformedPRG = errors.New("prg: malformed")

// Allele is the half-open text range [Start, End) spelled by one allele.
// Empty alleles have Start == End.
type Allele struct {
	Start int
	End   int
}

// Len returns the number of bases in the allele.
func (a Allele) Len() int { return a.End - a.Start }

// Site is one variant site of the PRG.
type Site struct {
	// ID is the site's boundary marker.
	ID Symbol
	// Start and End are the text positions of the opening and closing
	// boundary markers.
	Start, End int
	// Alleles are ordered left to right; allele k is Alleles[k-1].
	Alleles []Allele
}

// AlleleMarker returns the marker separating the site's alleles.
func (s *Site) AlleleMarker() Symbol { return s.ID + 1 }

// AlleleEndingAt returns the 1-based allele whose range ends at the marker
// located at text position pos.
func (s *Site) AlleleEndingAt(pos int) (uint32, bool) {
	for i, a := range s.Alleles {
		if a.End == pos {
			return uint32(i + 1), true
		}
	}
	return 0, false
}

// AlleleStartingAt returns the 1-based allele whose range starts at pos.
// pos is always the position right after an opening or allele marker.
func (s *Site) AlleleStartingAt(pos int) (uint32, bool) {
	for i, a := range s.Alleles {
		if a.Start == pos {
			return uint32(i + 1), true
		}
	}
	return 0, false
}

// Allele returns the range of the 1-based allele k.
func (s *Site) Allele(k uint32) (Allele, bool) {
	if k == 0 || int(k) > len(s.Alleles) {
		return Allele{}, false
	}
	return s.Alleles[k-1], true
}

// PRG is an immutable, validated linearized population reference graph.
type PRG struct {
	text   []Symbol
	sites  []Site
	byID   map[Symbol]int
	site   []int32  // per position: index into sites for allele bases, else -1
	allele []uint32 // per position: 1-based allele for allele bases, else 0
	maxSym Symbol
	// longest allele, in bases
	maxAllele int
}

// MarkerLimit returns the largest marker accepted in a PRG of n symbols.
// Index structures are sized by the largest symbol, so markers are bounded
// by the text length rather than by the symbol width.
func MarkerLimit(n int) uint64 {
	limit := uint64(FirstMarker) + 2*uint64(n) + 1
	if limit > math.MaxUint32 {
		limit = math.MaxUint32
	}
	return limit
}

// FromSymbols validates syms and builds a PRG. The slice is copied.
func FromSymbols(syms []Symbol) (*PRG, error) {
	limit := MarkerLimit(len(syms))
	p := &PRG{
		text:   append([]Symbol(nil), syms...),
		byID:   make(map[Symbol]int),
		site:   make([]int32, len(syms)),
		allele: make([]uint32, len(syms)),
	}

	open := -1 // index of the currently open site
	for pos, s := range p.text {
		if uint64(s) > limit {
			return nil, fmt.Errorf("%w: marker %d at position %d exceeds %d", ErrMalformedPRG, s, pos, limit)
		}
		if s > p.maxSym {
			p.maxSym = s
		}
		p.site[pos] = -1

		switch {
		case s == Terminator:
			return nil, fmt.Errorf("%w: terminator at position %d", ErrMalformedPRG, pos)

		case s.IsBase():
			if open >= 0 {
				st := &p.sites[open]
				p.site[pos] = int32(open)
				p.allele[pos] = uint32(len(st.Alleles))
			}

		case s.IsBoundary():
			if s == math.MaxUint32 {
				return nil, fmt.Errorf("%w: boundary marker %d at position %d has no allele marker", ErrMalformedPRG, s, pos)
			}
			if open < 0 {
				if _, seen := p.byID[s]; seen {
					return nil, fmt.Errorf("%w: site %d reopened at position %d", ErrMalformedPRG, s, pos)
				}
				p.byID[s] = len(p.sites)
				p.sites = append(p.sites, Site{
					ID:      s,
					Start:   pos,
					End:     -1,
					Alleles: []Allele{{Start: pos + 1}},
				})
				open = len(p.sites) - 1
				continue
			}
			st := &p.sites[open]
			if st.ID != s {
				return nil, fmt.Errorf("%w: site %d opened inside site %d at position %d", ErrMalformedPRG, s, st.ID, pos)
			}
			st.Alleles[len(st.Alleles)-1].End = pos
			st.End = pos
			open = -1

		default: // allele marker
			if open < 0 || p.sites[open].AlleleMarker() != s {
				return nil, fmt.Errorf("%w: allele marker %d outside its site at position %d", ErrMalformedPRG, s, pos)
			}
			st := &p.sites[open]
			st.Alleles[len(st.Alleles)-1].End = pos
			st.Alleles = append(st.Alleles, Allele{Start: pos + 1})
		}
	}
	if open >= 0 {
		return nil, fmt.Errorf("%w: site %d is never closed", ErrMalformedPRG, p.sites[open].ID)
	}
	for i := range p.sites {
		for _, a := range p.sites[i].Alleles {
			p.maxAllele = max(p.maxAllele, a.Len())
		}
	}
	return p, nil
}

// Len returns the number of symbols (terminator excluded).
func (p *PRG) Len() int { return len(p.text) }

// Symbols returns the text. The slice is shared and must not be modified.
func (p *PRG) Symbols() []Symbol { return p.text }

// At returns the symbol at text position pos.
func (p *PRG) At(pos int) Symbol { return p.text[pos] }

// MaxSymbol returns the largest symbol in the text.
func (p *PRG) MaxSymbol() Symbol { return p.maxSym }

// MaxAlleleLen returns the number of bases in the longest allele.
func (p *PRG) MaxAlleleLen() int { return p.maxAllele }

// Sites returns the variant sites in text order. Shared, read-only.
func (p *PRG) Sites() []Site { return p.sites }

// NumSites returns the number of variant sites.
func (p *PRG) NumSites() int { return len(p.sites) }

// Site looks up a site by its boundary marker (or by its allele marker).
func (p *PRG) Site(marker Symbol) (*Site, bool) {
	i, ok := p.byID[marker.SiteID()]
	if !ok {
		return nil, false
	}
	return &p.sites[i], true
}

// AlleleAt reports the site and 1-based allele containing the base at text
// position pos. ok is false for reference bases and markers.
func (p *PRG) AlleleAt(pos int) (site Symbol, allele uint32, ok bool) {
	if pos < 0 || pos >= len(p.text) || p.site[pos] < 0 {
		return Terminator, 0, false
	}
	return p.sites[p.site[pos]].ID, p.allele[pos], true
}

// MarkerCount returns how many times marker occurs in the text: 2 for a
// boundary marker, alleles-1 for an allele marker, 0 for unknown markers.
func (p *PRG) MarkerCount(marker Symbol) int {
	st, ok := p.Site(marker)
	if !ok {
		return 0
	}
	if marker.IsBoundary() {
		return 2
	}
	return len(st.Alleles) - 1
}

// String renders the PRG in the text format accepted by Parse.
func (p *PRG) String() string {
	var sb strings.Builder
	prevMarker := false
	for _, s := range p.text {
		if s.IsMarker() {
			if prevMarker {
				sb.WriteByte(',')
			}
			sb.WriteString(s.String())
			prevMarker = true
			continue
		}
		sb.WriteByte(BaseByte(s))
		prevMarker = false
	}
	return sb.String()
}
