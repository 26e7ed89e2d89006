// Package encoding implements the transcoding byte decoder and encoder
// described in spec.md §4.1: a small per-encoding state machine that turns
// a byte stream into Unicode scalar values (and back), with a BOM sniffer
// and a heuristic auto-detector over the leading bytes.
//
// golang.org/x/text/encoding/unicode and golang.org/x/text/transform are
// the idiomatic stack for this in the retrieval pack (opendcm's reader.go,
// cue-lang/cue's internal/encoding, oleiade/xk6-encoding's text_decoder.go)
// but are not used here: transform.Transformer buffers internally and has
// no UTF-32 codec, so it cannot report the byte-exact maximal-invalid-subpart
// offsets spec.md §4.1/§8 require for all five encodings. See DESIGN.md.
package encoding

import "fmt"

// Kind identifies one of the five Unicode encodings the core understands,
// per spec.md §3.
type Kind int

const (
	Unknown Kind = iota
	UTF8
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	case UTF32LE:
		return "UTF-32LE"
	case UTF32BE:
		return "UTF-32BE"
	default:
		return fmt.Sprintf("encoding.Kind(%d)", int(k))
	}
}

// MinUnitSize is the number of bytes in the smallest unit of k (1 for UTF-8,
// 2 for the UTF-16 variants, 4 for the UTF-32 variants). It bounds how many
// trailing bytes can be "a partial unit at end of input".
func (k Kind) MinUnitSize() int {
	switch k {
	case UTF16LE, UTF16BE:
		return 2
	case UTF32LE, UTF32BE:
		return 4
	default:
		return 1
	}
}

const (
	maxCodepoint     = 0x10FFFF
	surrogateLow     = 0xD800
	surrogateHigh    = 0xDFFF
	highSurrogateLow = 0xD800
	highSurrogateEnd = 0xDBFF
	lowSurrogateLow  = 0xDC00
	lowSurrogateEnd  = 0xDFFF
)

func isSurrogate(r rune) bool {
	return r >= surrogateLow && r <= surrogateHigh
}

func isHighSurrogate(r rune) bool {
	return r >= highSurrogateLow && r <= highSurrogateEnd
}

func isLowSurrogate(r rune) bool {
	return r >= lowSurrogateLow && r <= lowSurrogateEnd
}
