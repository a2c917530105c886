package share

import (
	"errors"
	"slices"
	"strings"
)

// uriAlphabet is the 64-symbol output alphabet of lz-string's
// compressToEncodedURIComponent. Every symbol is legal in a query value.
const uriAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-$"

const bitsPerSymbol = 6

// Reserved codes at the start of the dictionary.
const (
	codeLiteral8  = 0
	codeLiteral16 = 1
	codeEnd       = 2
)

var (
	errTruncated = errors.New("stream ends before end marker")
	errBadRef    = errors.New("reference to undefined dictionary entry")
	errBadSymbol = errors.New("symbol outside the URI alphabet")
)

// bitWriter packs values into 6-bit symbols, most significant bit first.
type bitWriter struct {
	out strings.Builder
	val int
	pos int
}

func (w *bitWriter) bit(b int) {
	w.val = w.val<<1 | b
	if w.pos == bitsPerSymbol-1 {
		w.out.WriteByte(uriAlphabet[w.val])
		w.pos, w.val = 0, 0
		return
	}
	w.pos++
}

// write emits the low n bits of v, least significant bit first.
func (w *bitWriter) write(v, n int) {
	for j := 0; j < n; j++ {
		w.bit(v & 1)
		v >>= 1
	}
}

// flush pads the final symbol with zero bits. A symbol is always emitted,
// even when the stream ended on a symbol boundary.
func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.pos == bitsPerSymbol-1 {
			w.out.WriteByte(uriAlphabet[w.val])
			return
		}
		w.pos++
	}
}

// compressor holds the LZW state of one compression run.
// Dictionary keys are sequences of UTF-16 code units, two bytes per unit.
type compressor struct {
	bw        bitWriter
	dict      map[string]int
	pending   map[string]bool // single units not yet sent as literals
	dictSize  int
	numBits   int
	enlargeIn int
}

func (c *compressor) grow() {
	c.enlargeIn--
	if c.enlargeIn == 0 {
		c.enlargeIn = 1 << c.numBits
		c.numBits++
	}
}

func (c *compressor) emit(w string) {
	if c.pending[w] {
		unit := int(w[0])<<8 | int(w[1])
		if unit < 256 {
			c.bw.write(codeLiteral8, c.numBits)
			c.bw.write(unit, 8)
		} else {
			c.bw.write(codeLiteral16, c.numBits)
			c.bw.write(unit, 16)
		}
		c.grow()
		delete(c.pending, w)
	} else {
		c.bw.write(c.dict[w], c.numBits)
	}
	c.grow()
}

// compressUnits compresses a UTF-16 code unit sequence into URI alphabet
// symbols. The output is bit-identical to lz-string's
// compressToEncodedURIComponent for the same input.
func compressUnits(units []uint16) string {
	c := &compressor{
		dict:      make(map[string]int),
		pending:   make(map[string]bool),
		dictSize:  3,
		numBits:   2,
		enlargeIn: 2,
	}

	var w string
	for _, u := range units {
		k := string([]byte{byte(u >> 8), byte(u)})
		if _, ok := c.dict[k]; !ok {
			c.dict[k] = c.dictSize
			c.dictSize++
			c.pending[k] = true
		}

		wk := w + k
		if _, ok := c.dict[wk]; ok {
			w = wk
			continue
		}
		c.emit(w)
		c.dict[wk] = c.dictSize
		c.dictSize++
		w = k
	}
	if w != "" {
		c.emit(w)
	}

	c.bw.write(codeEnd, c.numBits)
	c.bw.flush()
	return c.bw.out.String()
}

// bitReader reads bits from URI alphabet symbols. Reading past the end of
// the input yields zero bits; the caller detects truncation via index.
type bitReader struct {
	in    string
	val   int
	mask  int
	index int
}

func newBitReader(in string) (*bitReader, error) {
	r := &bitReader{in: in, mask: 1 << (bitsPerSymbol - 1)}
	v, err := r.symbol(0)
	if err != nil {
		return nil, err
	}
	r.val, r.index = v, 1
	return r, nil
}

func (r *bitReader) symbol(i int) (int, error) {
	if i >= len(r.in) {
		return 0, nil
	}
	v := strings.IndexByte(uriAlphabet, r.in[i])
	if v < 0 {
		return 0, errBadSymbol
	}
	return v, nil
}

// read returns the next n bits, least significant bit first.
func (r *bitReader) read(n int) (int, error) {
	bits := 0
	for i := 0; i < n; i++ {
		if r.val&r.mask != 0 {
			bits |= 1 << i
		}
		r.mask >>= 1
		if r.mask == 0 {
			r.mask = 1 << (bitsPerSymbol - 1)
			v, err := r.symbol(r.index)
			if err != nil {
				return 0, err
			}
			r.val = v
			r.index++
		}
	}
	return bits, nil
}

func (r *bitReader) exhausted() bool { return r.index > len(r.in) }

// decompressUnits reverses compressUnits. It accepts any stream produced by
// lz-string's compressToEncodedURIComponent. A stream carrying only the end
// marker decodes to an empty, non-nil slice.
func decompressUnits(in string) ([]uint16, error) {
	r, err := newBitReader(in)
	if err != nil {
		return nil, err
	}

	literal := func(code int) ([]uint16, error) {
		width := 8
		if code == codeLiteral16 {
			width = 16
		}
		v, err := r.read(width)
		if err != nil {
			return nil, err
		}
		return []uint16{uint16(v)}, nil
	}

	first, err := r.read(2)
	if err != nil {
		return nil, err
	}
	var w []uint16
	switch first {
	case codeLiteral8, codeLiteral16:
		if w, err = literal(first); err != nil {
			return nil, err
		}
	case codeEnd:
		return []uint16{}, nil
	default:
		return nil, errBadRef
	}

	// Entries 0-2 are the reserved codes.
	dict := [][]uint16{nil, nil, nil, w}
	numBits, enlargeIn := 3, 4
	grow := func() {
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}

	out := slices.Clone(w)
	for {
		if r.exhausted() {
			return nil, errTruncated
		}

		code, err := r.read(numBits)
		if err != nil {
			return nil, err
		}
		switch code {
		case codeLiteral8, codeLiteral16:
			entry, err := literal(code)
			if err != nil {
				return nil, err
			}
			dict = append(dict, entry)
			code = len(dict) - 1
			enlargeIn--
		case codeEnd:
			return out, nil
		}
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dict):
			entry = dict[code]
		case code == len(dict):
			entry = append(slices.Clone(w), w[0])
		default:
			return nil, errBadRef
		}
		out = append(out, entry...)

		dict = append(dict, append(slices.Clone(w), entry[0]))
		grow()
		w = entry
	}
}
