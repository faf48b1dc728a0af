package prg

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
)

// SyntaxError reports an unparseable byte in PRG text.
type SyntaxError struct {
	Offset int
	Char   byte
	msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("prg: syntax error at offset %d (%q): %s", e.Offset, e.Char, e.msg)
}

// Unwrap lets callers match syntax errors with errors.Is(err, ErrMalformedPRG).
func (e *SyntaxError) Unwrap() error { return ErrMalformedPRG }

// Parse decodes the text format described in the package documentation.
func Parse(text string) (*PRG, error) {
	syms, err := decode([]byte(text))
	if err != nil {
		return nil, err
	}
	return FromSymbols(syms)
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(text string) *PRG {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Read parses a PRG from r, transparently decompressing gzip input.
func Read(r io.Reader) (*PRG, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("prg: open gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("prg: read: %w", err)
	}
	syms, err := decode(data)
	if err != nil {
		return nil, err
	}
	return FromSymbols(syms)
}

// ReadFile parses the PRG stored at path.
func ReadFile(path string) (*PRG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func decode(data []byte) ([]Symbol, error) {
	syms := make([]Symbol, 0, len(data))

	var (
		num      uint64
		inNum    bool
		numStart int
		header   bool
		lineHead = true
	)
	flush := func() error {
		if !inNum {
			return nil
		}
		inNum = false
		if num < uint64(FirstMarker) {
			return &SyntaxError{Offset: numStart, Char: data[numStart], msg: fmt.Sprintf("marker %d below %d", num, FirstMarker)}
		}
		syms = append(syms, Symbol(num))
		num = 0
		return nil
	}

	for i, b := range data {
		if header {
			if b == '\n' {
				header = false
				lineHead = true
			}
			continue
		}
		if lineHead && b == '>' {
			header = true
			continue
		}
		lineHead = b == '\n'

		switch {
		case b >= '0' && b <= '9':
			if !inNum {
				inNum = true
				numStart = i
			}
			num = num*10 + uint64(b-'0')
			if num > math.MaxUint32 {
				return nil, &SyntaxError{Offset: numStart, Char: data[numStart], msg: "marker overflows uint32"}
			}
		case b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ',':
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			if err := flush(); err != nil {
				return nil, err
			}
			s, ok := BaseFromByte(b)
			if !ok {
				return nil, &SyntaxError{Offset: i, Char: b, msg: "not a base or marker"}
			}
			syms = append(syms, s)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return syms, nil
}
