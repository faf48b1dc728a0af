package gramsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gramsearch/blobstore"
	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/search"
)

var (
	// ErrInvalidQuery is returned for empty queries or queries containing
	// anything but A, C, G and T.
	ErrInvalidQuery = search.ErrInvalidQuery
	// ErrMalformedIndex reports an index violating the marker layout.
	ErrMalformedIndex = search.ErrMalformedIndex
	// ErrBudgetExceeded is returned when a search outgrows WithMaxFrontier.
	ErrBudgetExceeded = search.ErrBudgetExceeded
	// ErrMalformedPRG is returned for PRG text that cannot be parsed.
	ErrMalformedPRG = prg.ErrMalformedPRG
	// ErrNotFound is returned when a snapshot does not exist.
	ErrNotFound = blobstore.ErrNotFound

	// ErrCorruptIndex is returned when a snapshot fails validation or uses
	// an unknown format.
	ErrCorruptIndex = errors.New("corrupt index snapshot")
	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine closed")
	// ErrMemoryLimit is returned by New when the resource controller has
	// no room for the index.
	ErrMemoryLimit = errors.New("memory limit exceeded")
)

// ErrInvalidBase reports the first invalid character of a query.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvalidBase struct {
	Pos int
	// Char is set for text queries, Symbol for symbol queries.
	Char   byte
	Symbol prg.Symbol
	cause  error
}

func (e *ErrInvalidBase) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("invalid base %q at query position %d", e.Char, e.Pos)
	}
	return fmt.Sprintf("invalid base symbol %s at query position %d", e.Symbol, e.Pos)
}

func (e *ErrInvalidBase) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ib *search.InvalidBaseError
	if errors.As(err, &ib) {
		return &ErrInvalidBase{Pos: ib.Pos, Char: ib.Char, Symbol: ib.Symbol, cause: err}
	}

	// Snapshot validation unification.
	if errors.Is(err, fmindex.ErrCorrupt) || errors.Is(err, fmindex.ErrIncompatibleFormat) {
		return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	}

	return err
}
