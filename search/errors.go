package search

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gramsearch/prg"
)

var (
	// ErrInvalidQuery is returned for empty queries or queries with
	// non-base symbols.
	ErrInvalidQuery = errors.New("search: invalid query")

	// ErrMalformedIndex reports an index that violates the marker layout
	// contract (wrong marker block size, marker rows that do not sit on a
	// site boundary). It is never a "no match" signal.
	ErrMalformedIndex = errors.New("search: malformed index")

	// ErrBudgetExceeded is returned when the frontier grows past
	// Config.MaxFrontier.
	ErrBudgetExceeded = errors.New("search: frontier budget exceeded")
)

// InvalidBaseError reports the first query position that is not A, C, G
// or T.
type InvalidBaseError struct {
	Pos int
	// Char is the offending input byte when the query was parsed from text.
	Char byte
	// Symbol is the offending symbol when the query was given as symbols.
	Symbol prg.Symbol
}

func (e *InvalidBaseError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("search: invalid base %q at position %d", e.Char, e.Pos)
	}
	return fmt.Sprintf("search: invalid base symbol %s at position %d", e.Symbol, e.Pos)
}

func (e *InvalidBaseError) Unwrap() error { return ErrInvalidQuery }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedIndex, fmt.Sprintf(format, args...))
}
