package prg

import "strconv"

// Symbol is one character of the linearized PRG alphabet.
type Symbol uint32

const (
	// Terminator is the unique smallest symbol appended to the indexed text.
	Terminator Symbol = 0
	// A is the adenine base.
	A Symbol = 1
	// C is the cytosine base.
	C Symbol = 2
	// G is the guanine base.
	G Symbol = 3
	// T is the thymine base.
	T Symbol = 4

	// FirstMarker is the boundary marker of the first site.
	FirstMarker Symbol = 5
)

// NumBases is the size of the base alphabet.
const NumBases = 4

// Bases lists the base symbols in alphabet order.
var Bases = [NumBases]Symbol{A, C, G, T}

// IsBase reports whether s is one of A, C, G, T.
func (s Symbol) IsBase() bool { return s >= A && s <= T }

// IsMarker reports whether s is a site boundary or allele marker.
func (s Symbol) IsMarker() bool { return s >= FirstMarker }

// IsBoundary reports whether s opens or closes a site.
func (s Symbol) IsBoundary() bool { return s.IsMarker() && s%2 == 1 }

// IsAlleleMarker reports whether s separates two alleles of a site.
func (s Symbol) IsAlleleMarker() bool { return s.IsMarker() && s%2 == 0 }

// SiteID returns the identifier (boundary marker) of the site a marker
// belongs to. It returns Terminator for non-marker symbols.
func (s Symbol) SiteID() Symbol {
	switch {
	case s.IsBoundary():
		return s
	case s.IsAlleleMarker():
		return s - 1
	default:
		return Terminator
	}
}

// String renders a base as its letter and a marker as its decimal value.
func (s Symbol) String() string {
	switch s {
	case Terminator:
		return "$"
	case A, C, G, T:
		return string(baseLetters[s])
	default:
		return strconv.FormatUint(uint64(s), 10)
	}
}

var baseLetters = [...]byte{0, 'A', 'C', 'G', 'T'}

// BaseFromByte decodes an ASCII nucleotide (case-insensitive).
func BaseFromByte(b byte) (Symbol, bool) {
	switch b {
	case 'A', 'a':
		return A, true
	case 'C', 'c':
		return C, true
	case 'G', 'g':
		return G, true
	case 'T', 't':
		return T, true
	}
	return Terminator, false
}

// BaseByte returns the upper-case letter of a base symbol, or 0.
func BaseByte(s Symbol) byte {
	if !s.IsBase() {
		return 0
	}
	return baseLetters[s]
}

// SiteMarkers returns the boundary and allele markers of the k-th site.
func SiteMarkers(k int) (boundary, allele Symbol) {
	boundary = FirstMarker + Symbol(2*k)
	return boundary, boundary + 1
}
