package search

import "github.com/hupe1980/gramsearch/prg"

// markerBlock returns the SA block of rows whose suffix starts with marker
// m, after checking it holds exactly count rows.
func markerBlock(idx Index, m prg.Symbol, count uint64) (Interval, error) {
	block := Interval{Left: idx.C(m), Right: idx.C(m + 1)}
	if block.Size() != count {
		return Interval{}, malformed("marker %d occupies %d rows, want %d", m, block.Size(), count)
	}
	return block, nil
}

// Skip narrows [left, right) to the rows of marker m's SA block that are
// reached by prepending m to a row of the input range. count is the number
// of occurrences of m in the text. ok is false when no row of the input
// range is preceded by m.
func Skip(idx Index, left, right uint64, m prg.Symbol, count uint64) (newLeft, newRight uint64, ok bool, err error) {
	block, err := markerBlock(idx, m, count)
	if err != nil {
		return 0, 0, false, err
	}
	newLeft = block.Left + idx.RankMarker(m, left)
	newRight = block.Left + idx.RankMarker(m, right)
	if newLeft > newRight || newRight > block.Right {
		return 0, 0, false, malformed("marker %d narrowed to [%d,%d) outside block %s", m, newLeft, newRight, block)
	}
	return newLeft, newRight, newLeft < newRight, nil
}
