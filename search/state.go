package search

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// State is one partial match: an SA interval plus the route it took
// through variant sites.
type State struct {
	Interval  Interval
	Path      Path
	SiteState SiteState
	Cached    CachedSite

	invalid bool
}

// Invalidate marks the state for removal by Frontier.Prune.
func (s *State) Invalidate() { s.invalid = true }

// Invalid reports whether the state was invalidated.
func (s State) Invalid() bool { return s.invalid }

// Equal compares interval, path, classification and cached site. The
// invalid flag is not part of a state's identity.
func (s State) Equal(o State) bool {
	return s.Interval == o.Interval &&
		s.SiteState == o.SiteState &&
		s.Cached == o.Cached &&
		s.Path.Equal(o.Path)
}

// Positions returns the text positions of the state's rows, ascending.
func (s State) Positions(idx Index) []uint64 {
	out := make([]uint64, 0, s.Interval.Size())
	for row := s.Interval.Left; row < s.Interval.Right; row++ {
		out = append(out, idx.Locate(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s State) String() string {
	return fmt.Sprintf("%s %s %s cached=%s", s.Interval, s.SiteState, s.Path, s.Cached)
}

// branch derives the state reached by crossing into or out of a site.
func (s State) branch(b Branch) State {
	child := State{
		Interval:  b.Interval,
		Path:      s.Path.extend(b.Site),
		SiteState: UnknownSiteState,
	}
	if b.Entering {
		child.Cached = NewCachedSite(b.Site)
	}
	return child
}

// key encodes everything Equal compares.
func (s State) key() string {
	buf := make([]byte, 0, 24+12*len(s.Path))
	buf = binary.LittleEndian.AppendUint64(buf, s.Interval.Left)
	buf = binary.LittleEndian.AppendUint64(buf, s.Interval.Right)
	buf = append(buf, byte(s.SiteState))
	if v, ok := s.Cached.Get(); ok {
		buf = append(buf, 1)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Site))
		buf = binary.LittleEndian.AppendUint32(buf, v.Allele)
	} else {
		buf = append(buf, 0)
	}
	for _, v := range s.Path {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Site))
		buf = binary.LittleEndian.AppendUint32(buf, v.Allele)
	}
	return string(buf)
}

// Frontier is the set of live partial matches after a generation.
type Frontier struct {
	states []State
}

// NewFrontier returns a frontier holding states.
func NewFrontier(states ...State) Frontier {
	return Frontier{states: append([]State(nil), states...)}
}

// Len returns the number of states.
func (f Frontier) Len() int { return len(f.states) }

// Empty reports whether no state survived.
func (f Frontier) Empty() bool { return len(f.states) == 0 }

// States returns the states. The slice is shared and must not be modified.
func (f Frontier) States() []State { return f.states }

// At returns the i-th state.
func (f Frontier) At(i int) State { return f.states[i] }

// Append adds a state.
func (f *Frontier) Append(s State) { f.states = append(f.states, s) }

// Prune removes invalidated states and states with empty intervals,
// preserving order.
func (f *Frontier) Prune() {
	out := f.states[:0]
	for _, s := range f.states {
		if s.invalid || s.Interval.Empty() {
			continue
		}
		out = append(out, s)
	}
	clear(f.states[len(out):])
	f.states = out
}

// Dedup removes states equal to an earlier state, preserving order.
func (f *Frontier) Dedup() {
	seen := make(map[string]struct{}, len(f.states))
	out := f.states[:0]
	for _, s := range f.states {
		k := s.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	clear(f.states[len(out):])
	f.states = out
}

// Matches returns the total number of rows across all states.
func (f Frontier) Matches() uint64 {
	var n uint64
	for _, s := range f.states {
		n += s.Interval.Size()
	}
	return n
}

// SameStates reports whether f and o hold equal states, ignoring order.
func (f Frontier) SameStates(o Frontier) bool {
	if len(f.states) != len(o.states) {
		return false
	}
	counts := make(map[string]int, len(f.states))
	for _, s := range f.states {
		counts[s.key()]++
	}
	for _, s := range o.states {
		k := s.key()
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}
