package search

import (
	"sort"

	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/rank"
)

// Step extends every match in iv one base to the left. The result is empty
// when c does not precede any row of iv.
func Step(c prg.Symbol, iv Interval, ranks *rank.Cache, idx Index) Interval {
	if iv.Empty() || !c.IsBase() {
		return Interval{}
	}
	base := idx.C(c)
	return Interval{
		Left:  base + ranks.Rank(c, iv.Left),
		Right: base + ranks.Rank(c, iv.Right),
	}
}

// Branch is one way of continuing a match across a marker.
type Branch struct {
	// Interval is the single row the match continues from.
	Interval Interval
	// Site is the allele being entered or left.
	Site VariantSite
	// Entering is true when the match enters the site from its right
	// flank and continues inside Site.
	Entering bool
}

// CrossMarker continues the rows of iv that are preceded by marker across
// the marker. A closing boundary fans out into one branch per allele; an
// opening boundary or an allele marker leaves the site to the left, landing
// on the opening boundary's row.
func CrossMarker(idx Index, marker prg.Symbol, iv Interval) ([]Branch, error) {
	p := idx.PRG()
	site, ok := p.Site(marker)
	if !marker.IsMarker() || !ok {
		return nil, malformed("symbol %s is not a known marker", marker)
	}

	left, right, ok, err := Skip(idx, iv.Left, iv.Right, marker, uint64(p.MarkerCount(marker)))
	if err != nil || !ok {
		return nil, err
	}

	var out []Branch
	for row := left; row < right; row++ {
		pos := int(idx.Locate(row))
		switch {
		case marker.IsBoundary() && pos == site.End:
			branches, err := enterSite(idx, site, row)
			if err != nil {
				return nil, err
			}
			out = append(out, branches...)

		case marker.IsBoundary() && pos == site.Start:
			out = append(out, Branch{
				Interval: Interval{Left: row, Right: row + 1},
				Site:     VariantSite{Site: site.ID, Allele: 1},
			})

		case marker.IsAlleleMarker():
			k, ok := site.AlleleStartingAt(pos + 1)
			if !ok {
				return nil, malformed("allele marker %d at %d starts no allele", marker, pos)
			}
			open, err := openingRow(idx, site)
			if err != nil {
				return nil, err
			}
			out = append(out, Branch{
				Interval: Interval{Left: open, Right: open + 1},
				Site:     VariantSite{Site: site.ID, Allele: k},
			})

		default:
			return nil, malformed("boundary %d at %d is neither end of its site", marker, pos)
		}
	}
	return out, nil
}

// enterSite returns one branch per allele of site, each positioned on the
// row of the marker terminating that allele. closeRow is the row of the
// closing boundary, which terminates the last allele.
func enterSite(idx Index, site *prg.Site, closeRow uint64) ([]Branch, error) {
	n := len(site.Alleles)
	out := make([]Branch, 0, n)

	if n > 1 {
		block, err := markerBlock(idx, site.AlleleMarker(), uint64(n-1))
		if err != nil {
			return nil, err
		}
		for row := block.Left; row < block.Right; row++ {
			k, ok := site.AlleleEndingAt(int(idx.Locate(row)))
			if !ok {
				return nil, malformed("allele marker row %d ends no allele of site %d", row, site.ID)
			}
			out = append(out, Branch{
				Interval: Interval{Left: row, Right: row + 1},
				Site:     VariantSite{Site: site.ID, Allele: k},
				Entering: true,
			})
		}
	}
	out = append(out, Branch{
		Interval: Interval{Left: closeRow, Right: closeRow + 1},
		Site:     VariantSite{Site: site.ID, Allele: uint32(n)},
		Entering: true,
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Site.Allele < out[j].Site.Allele })
	return out, nil
}

// openingRow returns the row whose suffix starts at the site's opening
// boundary.
func openingRow(idx Index, site *prg.Site) (uint64, error) {
	block, err := markerBlock(idx, site.ID, 2)
	if err != nil {
		return 0, err
	}
	for row := block.Left; row < block.Right; row++ {
		if int(idx.Locate(row)) == site.Start {
			return row, nil
		}
	}
	return 0, malformed("no row for opening boundary of site %d", site.ID)
}
