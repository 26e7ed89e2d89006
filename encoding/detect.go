package encoding

import (
	"bytes"
	"errors"
)

// ErrExpectedMoreTokens is returned by DetectKind when no bytes at all are
// available and the caller has signalled that no more input is coming.
var ErrExpectedMoreTokens = errors.New("encoding: expected more tokens")

var errNeedMoreBytes = errors.New("encoding: need more bytes to detect")

// NeedsMoreBytes reports whether err from DetectKind means the caller
// should supply more leading bytes (as opposed to a terminal detection
// failure).
func NeedsMoreBytes(err error) bool { return errors.Is(err, errNeedMoreBytes) }

// Detection is the outcome of DetectKind: the encoding found, how many of
// the leading bytes are a BOM to be skipped (0 if none), and whether a BOM
// was present.
type Detection struct {
	Kind   Kind
	BOMLen int
	HasBOM bool
}

// the three BOM patterns long enough to be ambiguous with a shorter prefix
// of themselves (spec.md §4.1's auto-detection table).
var bomPatterns = [][]byte{
	{0x00, 0x00, 0xFE, 0xFF}, // UTF-32BE BOM
	{0xFF, 0xFE, 0x00, 0x00}, // UTF-32LE BOM
	{0xEF, 0xBB, 0xBF},       // UTF-8 BOM
}

// ambiguousPrefix reports whether prefix (fewer than 4 bytes) could still
// turn into more than one outcome once more bytes arrive. This covers both
// the three BOM patterns above AND the two no-BOM 4-byte heuristics spec.md
// §4.1 gives the same priority as a BOM: "00 00 00 xx" (UTF-32BE) and
// "xx 00 00 00" (UTF-32LE). Without holding for those too, a genuine
// no-BOM UTF-32 prefix gets misread as UTF-16/UTF-8 the moment a shorter,
// BOM-only check stops matching.
func ambiguousPrefix(prefix []byte) bool {
	if len(prefix) >= 4 {
		return false
	}
	for _, p := range bomPatterns {
		if len(prefix) < len(p) && bytes.Equal(p[:len(prefix)], prefix) {
			return true
		}
	}
	allZero := true
	for _, b := range prefix {
		if b != 0x00 {
			allZero = false
			break
		}
	}
	if allZero {
		// Could still become "00 00 00 xx" (UTF-32BE, no BOM).
		return true
	}
	tailZero := true
	for _, b := range prefix[1:] {
		if b != 0x00 {
			tailZero = false
			break
		}
	}
	if tailZero {
		// Could still become "xx 00 00 00" (UTF-32LE, no BOM); vacuously
		// true at length 1, which is correct: a single non-zero byte alone
		// cannot yet rule out that pattern.
		return true
	}
	return false
}

// DetectKind applies the heuristic auto-detector of spec.md §4.1 to the
// leading bytes of a stream. prefix should hold up to 4 bytes; fewer are
// accepted if final is true (end of input reached with nothing more to
// come), in which case the same prefix rules are applied to whatever is
// present. If prefix is empty and final is true, it returns
// ErrExpectedMoreTokens. If more bytes are needed to disambiguate (e.g. a
// leading "00 00" that might still become a UTF-32BE BOM), it returns
// errNeedMoreBytes (see NeedsMoreBytes).
func DetectKind(prefix []byte, final bool) (Detection, error) {
	n := len(prefix)
	if n == 0 {
		if final {
			return Detection{}, ErrExpectedMoreTokens
		}
		return Detection{}, errNeedMoreBytes
	}
	if !final && ambiguousPrefix(prefix) {
		return Detection{}, errNeedMoreBytes
	}

	if n >= 4 {
		switch {
		case bytes.Equal(prefix[:4], bomPatterns[0]):
			return Detection{Kind: UTF32BE, BOMLen: 4, HasBOM: true}, nil
		case bytes.Equal(prefix[:4], bomPatterns[1]):
			return Detection{Kind: UTF32LE, BOMLen: 4, HasBOM: true}, nil
		case prefix[0] == 0x00 && prefix[1] == 0x00 && prefix[2] == 0x00:
			return Detection{Kind: UTF32BE}, nil
		case prefix[1] == 0x00 && prefix[2] == 0x00 && prefix[3] == 0x00:
			return Detection{Kind: UTF32LE}, nil
		}
	}

	if n >= 3 && bytes.Equal(prefix[:3], bomPatterns[2]) {
		return Detection{Kind: UTF8, BOMLen: 3, HasBOM: true}, nil
	}

	if n >= 2 {
		switch {
		case prefix[0] == 0xFE && prefix[1] == 0xFF:
			return Detection{Kind: UTF16BE, BOMLen: 2, HasBOM: true}, nil
		case prefix[0] == 0xFF && prefix[1] == 0xFE:
			return Detection{Kind: UTF16LE, BOMLen: 2, HasBOM: true}, nil
		case prefix[0] == 0x00:
			return Detection{Kind: UTF16BE}, nil
		case prefix[1] == 0x00:
			return Detection{Kind: UTF16LE}, nil
		}
	}

	return Detection{Kind: UTF8}, nil
}
