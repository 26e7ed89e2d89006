package encoding

import "fmt"

// ErrInvalidCodepoint is returned by Append when r is a surrogate or
// outside the Unicode scalar value range and cannot be encoded.
var ErrInvalidCodepoint = fmt.Errorf("encoding: invalid codepoint")

// Encoder appends codepoints to a byte buffer in one target Kind. It is
// the mirror of Decoder (spec.md §4.1/§2 item 3): given a codepoint and a
// target encoding, it appends 1-4 code units.
type Encoder struct {
	kind Kind
}

// NewEncoder returns an Encoder targeting kind. kind must not be Unknown.
func NewEncoder(kind Kind) *Encoder {
	if kind == Unknown {
		panic("encoding: NewEncoder with Unknown kind")
	}
	return &Encoder{kind: kind}
}

// Kind reports the target encoding.
func (e *Encoder) Kind() Kind { return e.kind }

// Append encodes r and appends it to dst, returning the extended slice. It
// fails with ErrInvalidCodepoint for surrogates and values above U+10FFFF;
// the caller (the writer, per spec.md §4.5) decides whether that should
// abort the write or be replaced with U+FFFD.
func (e *Encoder) Append(dst []byte, r rune) ([]byte, error) {
	if isSurrogate(r) || r < 0 || r > maxCodepoint {
		return dst, ErrInvalidCodepoint
	}
	switch e.kind {
	case UTF8:
		return appendUTF8(dst, r), nil
	case UTF16LE:
		return appendUTF16(dst, r, false), nil
	case UTF16BE:
		return appendUTF16(dst, r, true), nil
	case UTF32LE:
		return appendUTF32(dst, r, false), nil
	case UTF32BE:
		return appendUTF32(dst, r, true), nil
	default:
		panic("encoding: Append on Unknown-kind Encoder")
	}
}

// BOM returns the byte-order-mark for the encoder's Kind.
func (e *Encoder) BOM() []byte {
	switch e.kind {
	case UTF8:
		return []byte{0xEF, 0xBB, 0xBF}
	case UTF16BE:
		return []byte{0xFE, 0xFF}
	case UTF16LE:
		return []byte{0xFF, 0xFE}
	case UTF32BE:
		return []byte{0x00, 0x00, 0xFE, 0xFF}
	case UTF32LE:
		return []byte{0xFF, 0xFE, 0x00, 0x00}
	default:
		return nil
	}
}

func appendUTF8(dst []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, byte(0xC0|r>>6), byte(0x80|r&0x3F))
	case r < 0x10000:
		return append(dst, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	default:
		return append(dst, byte(0xF0|r>>18), byte(0x80|(r>>12)&0x3F), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
}

func appendUTF16(dst []byte, r rune, big bool) []byte {
	put := func(dst []byte, u uint16) []byte {
		if big {
			return append(dst, byte(u>>8), byte(u))
		}
		return append(dst, byte(u), byte(u>>8))
	}
	if r < 0x10000 {
		return put(dst, uint16(r))
	}
	r -= 0x10000
	hi := uint16(0xD800 + (r >> 10))
	lo := uint16(0xDC00 + (r & 0x3FF))
	dst = put(dst, hi)
	return put(dst, lo)
}

func appendUTF32(dst []byte, r rune, big bool) []byte {
	v := uint32(r)
	if big {
		return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
