package search

import (
	"fmt"
	"strings"

	"github.com/hupe1980/gramsearch/prg"
)

// Interval is a half-open range [Left, Right) of suffix array rows.
type Interval struct {
	Left  uint64
	Right uint64
}

// Size returns the number of rows in the interval.
func (iv Interval) Size() uint64 {
	if iv.Right <= iv.Left {
		return 0
	}
	return iv.Right - iv.Left
}

// Empty reports whether the interval holds no rows.
func (iv Interval) Empty() bool { return iv.Left >= iv.Right }

// Contains reports whether row lies in the interval.
func (iv Interval) Contains(row uint64) bool { return row >= iv.Left && row < iv.Right }

func (iv Interval) String() string { return fmt.Sprintf("[%d,%d)", iv.Left, iv.Right) }

// VariantSite identifies one allele of one site. Site is the site's
// boundary marker; Allele is 1-based.
type VariantSite struct {
	Site   prg.Symbol
	Allele uint32
}

func (v VariantSite) String() string { return fmt.Sprintf("(%d,%d)", v.Site, v.Allele) }

// Path lists the sites a match traversed, in crossing order. Because the
// search runs right to left, the last entry is the leftmost site.
type Path []VariantSite

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Equal reports whether p and q list the same crossings.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Last returns the most recent crossing.
func (p Path) Last() (VariantSite, bool) {
	if len(p) == 0 {
		return VariantSite{}, false
	}
	return p[len(p)-1], true
}

// extend returns a copy of p with v appended, unless p already ends with v.
func (p Path) extend(v VariantSite) Path {
	if last, ok := p.Last(); ok && last == v {
		return p.Clone()
	}
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, v)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// SiteState says whether a match currently lies inside an allele.
type SiteState uint8

const (
	// UnknownSiteState is not yet resolved, or mixed across the interval.
	UnknownSiteState SiteState = iota
	// WithinVariantSite means every row lies inside an allele.
	WithinVariantSite
	// OutsideVariantSite means every row lies in invariant sequence.
	OutsideVariantSite
)

func (s SiteState) String() string {
	switch s {
	case WithinVariantSite:
		return "within"
	case OutsideVariantSite:
		return "outside"
	default:
		return "unknown"
	}
}

// CachedSite optionally holds the allele a match is currently inside.
// The zero value is empty.
type CachedSite struct {
	site VariantSite
	ok   bool
}

// NewCachedSite returns a CachedSite holding v.
func NewCachedSite(v VariantSite) CachedSite { return CachedSite{site: v, ok: true} }

// Get returns the cached allele, if any.
func (c CachedSite) Get() (VariantSite, bool) { return c.site, c.ok }

func (c CachedSite) String() string {
	if !c.ok {
		return "none"
	}
	return c.site.String()
}
