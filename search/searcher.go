package search

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/rank"
)

// Config tunes a Searcher. The zero value searches sequentially with no
// frontier limit.
type Config struct {
	// Workers bounds how many states are extended concurrently within a
	// generation. Values below 2 run sequentially.
	Workers int
	// MaxFrontier aborts a search with ErrBudgetExceeded when a generation
	// holds more states. Zero disables the limit.
	MaxFrontier int
}

// Searcher runs queries against one index. It is safe for concurrent use.
type Searcher struct {
	idx   Index
	ranks *rank.Cache
	cfg   Config
}

// NewSearcher returns a Searcher over idx. ranks must be built from the
// same index.
func NewSearcher(idx Index, ranks *rank.Cache, cfg Config) *Searcher {
	return &Searcher{idx: idx, ranks: ranks, cfg: cfg}
}

// Index returns the index being searched.
func (s *Searcher) Index() Index { return s.idx }

// Config returns the searcher's configuration.
func (s *Searcher) Config() Config { return s.cfg }

// ValidateQuery checks that query is non-empty and made of bases only.
func ValidateQuery(query []prg.Symbol) error {
	if len(query) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidQuery)
	}
	for i, c := range query {
		if !c.IsBase() {
			return &InvalidBaseError{Pos: i, Symbol: c}
		}
	}
	return nil
}

// ParseQuery converts an ACGT string (case-insensitive) to symbols.
func ParseQuery(q string) ([]prg.Symbol, error) {
	if q == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidQuery)
	}
	out := make([]prg.Symbol, len(q))
	for i := 0; i < len(q); i++ {
		c, ok := prg.BaseFromByte(q[i])
		if !ok {
			return nil, &InvalidBaseError{Pos: i, Char: q[i]}
		}
		out[i] = c
	}
	return out, nil
}

// Search matches query against the index and returns the final frontier.
// An empty frontier means the query does not occur.
func (s *Searcher) Search(ctx context.Context, query []prg.Symbol) (Frontier, error) {
	if err := ValidateQuery(query); err != nil {
		return Frontier{}, err
	}

	frontier := NewFrontier(State{Interval: Interval{Left: 0, Right: s.idx.Len()}})
	last := len(query) - 1
	for i := last; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return Frontier{}, err
		}

		next, err := s.generation(ctx, frontier, query[i], i != last)
		if err != nil {
			return Frontier{}, err
		}
		frontier = next

		if frontier.Empty() {
			break
		}
		if s.cfg.MaxFrontier > 0 && frontier.Len() > s.cfg.MaxFrontier {
			return Frontier{}, fmt.Errorf("%w: %d states at query position %d (limit %d)",
				ErrBudgetExceeded, frontier.Len(), i, s.cfg.MaxFrontier)
		}
	}
	return frontier, nil
}

// generation extends every state of cur by base c. Children of each parent
// are collected in the parent's slot and concatenated in parent order.
func (s *Searcher) generation(ctx context.Context, cur Frontier, c prg.Symbol, expand bool) (Frontier, error) {
	states := cur.States()
	slots := make([][]State, len(states))

	if s.cfg.Workers < 2 || len(states) < 2 {
		for i, st := range states {
			out, err := s.extend(st, c, expand)
			if err != nil {
				return Frontier{}, err
			}
			slots[i] = out
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for i, st := range states {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := s.extend(st, c, expand)
				slots[i] = out
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return Frontier{}, err
		}
	}

	next := Frontier{states: slices.Concat(slots...)}
	next.Prune()
	next.Dedup()
	return next, nil
}

// extend branches st across preceding markers (when expand is set), steps
// the state and its branches by c and classifies the survivors.
func (s *Searcher) extend(st State, c prg.Symbol, expand bool) ([]State, error) {
	pending := []State{st}
	if expand {
		crossed, err := s.cross(st)
		if err != nil {
			return nil, err
		}
		pending = append(pending, crossed...)
	}

	out := make([]State, 0, len(pending))
	for _, p := range pending {
		p.Interval = Step(c, p.Interval, s.ranks, s.idx)
		if p.Interval.Empty() {
			p.Invalidate()
			continue
		}
		s.classify(&p)
		out = append(out, p)
	}
	return out, nil
}

// cross returns every state reachable from st by crossing markers, including
// chains of crossings through empty alleles and adjacent sites.
func (s *Searcher) cross(st State) ([]State, error) {
	var out []State
	queue := []State{st}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, m := range precedingMarkers(s.idx, cur.Interval) {
			branches, err := CrossMarker(s.idx, m, cur.Interval)
			if err != nil {
				return nil, err
			}
			for _, b := range branches {
				child := cur.branch(b)
				out = append(out, child)
				queue = append(queue, child)
			}
		}
	}
	return out, nil
}

// precedingMarkers returns the distinct markers found in the BWT over iv,
// ascending.
func precedingMarkers(idx Index, iv Interval) []prg.Symbol {
	var out []prg.Symbol
	idx.ForEachMarker(iv.Left, iv.Right, func(_ uint64, m prg.Symbol) bool {
		out = append(out, m)
		return true
	})
	slices.Sort(out)
	return slices.Compact(out)
}

func (s *Searcher) classify(st *State) {
	if st.SiteState != UnknownSiteState {
		return
	}
	if _, ok := st.Cached.Get(); ok {
		st.SiteState = WithinVariantSite
		return
	}
	if len(st.Path) > 0 {
		st.SiteState = OutsideVariantSite
		return
	}

	inside := s.idx.AlleleRows(st.Interval.Left, st.Interval.Right)
	switch inside {
	case 0:
		st.SiteState = OutsideVariantSite
	case st.Interval.Size():
		st.SiteState = WithinVariantSite
		if v, ok := s.commonAllele(st.Interval); ok {
			st.Cached = NewCachedSite(v)
		}
	}
}

// commonAllele returns the allele shared by every row of iv, if any.
// Rows sharing an allele start at distinct positions within it, so an
// interval wider than the longest allele is rejected without locating rows.
func (s *Searcher) commonAllele(iv Interval) (VariantSite, bool) {
	p := s.idx.PRG()
	if iv.Size() > uint64(p.MaxAlleleLen()) {
		return VariantSite{}, false
	}
	var first VariantSite
	for row := iv.Left; row < iv.Right; row++ {
		site, allele, ok := p.AlleleAt(int(s.idx.Locate(row)))
		if !ok {
			return VariantSite{}, false
		}
		v := VariantSite{Site: site, Allele: allele}
		if row == iv.Left {
			first = v
		} else if v != first {
			return VariantSite{}, false
		}
	}
	return first, true
}
