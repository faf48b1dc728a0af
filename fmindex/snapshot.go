package fmindex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/gramsearch/internal/hash"
	"github.com/hupe1980/gramsearch/internal/mmap"
	"github.com/hupe1980/gramsearch/prg"
)

// Snapshot layout (little endian):
//
//	magic      [4]byte  "GSIX"
//	version    uint8
//	compress   uint8
//	reserved   [2]byte
//	rawSize    uint64   payload size before compression
//	storedSize uint64   payload size as stored
//	checksum   uint32   CRC32 (IEEE) of the uncompressed payload
//	payload    [storedSize]byte
//
// The payload holds uint64 n followed by n uint32 text symbols (terminator
// last) and n uint32 suffix array entries. Everything else is rebuilt on
// load.
const (
	snapshotMagic   = "GSIX"
	snapshotVersion = 1
	headerSize      = 28
)

var (
	// ErrCorrupt is returned when a snapshot fails validation.
	ErrCorrupt = errors.New("fmindex: corrupt snapshot")
	// ErrIncompatibleFormat is returned for unknown magic or version.
	ErrIncompatibleFormat = errors.New("fmindex: incompatible snapshot format")
)

type saveOptions struct {
	compression Compression
}

// SaveOption configures Save.
type SaveOption func(*saveOptions)

// WithCompression selects the payload compression.
func WithCompression(c Compression) SaveOption {
	return func(o *saveOptions) { o.compression = c }
}

// Save writes a snapshot of the index to w.
func (x *Index) Save(w io.Writer, opts ...SaveOption) error {
	o := saveOptions{compression: CompressionZSTD}
	for _, fn := range opts {
		fn(&o)
	}

	n := len(x.text)
	payload := make([]byte, 8+8*n)
	binary.LittleEndian.PutUint64(payload, uint64(n))
	off := 8
	for _, s := range x.text {
		binary.LittleEndian.PutUint32(payload[off:], uint32(s))
		off += 4
	}
	for _, v := range x.sa {
		binary.LittleEndian.PutUint32(payload[off:], v)
		off += 4
	}

	stored, applied, err := compress(payload, o.compression)
	if err != nil {
		return fmt.Errorf("fmindex: compress: %w", err)
	}

	var hdr [headerSize]byte
	copy(hdr[:4], snapshotMagic)
	hdr[4] = snapshotVersion
	hdr[5] = byte(applied)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(payload)))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(stored)))
	binary.LittleEndian.PutUint32(hdr[24:], hash.IEEE(payload))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// Bytes returns the snapshot encoding of the index.
func (x *Index) Bytes(opts ...SaveOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.Save(&buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile writes a snapshot to path, replacing it atomically.
func (x *Index) SaveFile(path string, opts ...SaveOption) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := x.Save(f, opts...); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a snapshot from r.
func Load(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// LoadFile memory-maps the snapshot at path and decodes it.
func LoadFile(path string) (*Index, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	_ = m.Advise(mmap.AccessSequential)
	return LoadBytes(m.Bytes())
}

// LoadBytes decodes a snapshot. data is not retained.
func LoadBytes(data []byte) (*Index, error) {
	if len(data) < headerSize {
		if len(data) >= 4 && string(data[:4]) != snapshotMagic {
			return nil, fmt.Errorf("%w: bad magic", ErrIncompatibleFormat)
		}
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	if string(data[:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrIncompatibleFormat)
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrIncompatibleFormat, data[4])
	}
	comp := Compression(data[5])
	rawSize := binary.LittleEndian.Uint64(data[8:])
	storedSize := binary.LittleEndian.Uint64(data[16:])
	sum := binary.LittleEndian.Uint32(data[24:])

	body := data[headerSize:]
	if uint64(len(body)) != storedSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(body), storedSize)
	}
	if !validPayloadSize(rawSize) {
		return nil, fmt.Errorf("%w: implausible payload size %d", ErrCorrupt, rawSize)
	}
	payload, err := decompress(body, comp, rawSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if hash.IEEE(payload) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return decodePayload(payload)
}

// maxPayloadSize is the payload size of an index over MaxLen symbols.
const maxPayloadSize = 8 + 8*(MaxLen+1)

// validPayloadSize reports whether some index encodes to size bytes: a
// length word plus one symbol and one suffix-array entry per row.
func validPayloadSize(size uint64) bool {
	return size >= 16 && size <= maxPayloadSize && (size-8)%8 == 0
}

func decodePayload(payload []byte) (*Index, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("%w: short payload", ErrCorrupt)
	}
	n := binary.LittleEndian.Uint64(payload)
	if n == 0 || n > MaxLen+1 || uint64(len(payload)) != 8+8*n {
		return nil, fmt.Errorf("%w: bad length %d", ErrCorrupt, n)
	}

	syms := make([]prg.Symbol, n)
	off := 8
	for i := range syms {
		syms[i] = prg.Symbol(binary.LittleEndian.Uint32(payload[off:]))
		off += 4
	}
	if syms[n-1] != prg.Terminator {
		return nil, fmt.Errorf("%w: missing terminator", ErrCorrupt)
	}
	sa := make([]uint32, n)
	for i := range sa {
		sa[i] = binary.LittleEndian.Uint32(payload[off:])
		off += 4
	}

	p, err := prg.FromSymbols(syms[:n-1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return fromSuffixArray(p, sa)
}
