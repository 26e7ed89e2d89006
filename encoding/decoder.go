package encoding

// Status is the result of feeding one byte to a Decoder.
type Status int

const (
	// Pending means more bytes are needed to complete the current unit.
	Pending Status = iota
	// Codepoint means a full Unicode scalar value was decoded.
	Codepoint
	// Invalid means the maximal subpart just completed (per Unicode §3.9)
	// cannot be part of a valid sequence.
	Invalid
)

// Result is returned by Decoder.Feed.
type Result struct {
	Status Status
	Rune   rune
	// Width is the number of bytes that made up the just-completed
	// subpart: the valid sequence on Codepoint, or the maximal invalid
	// subpart on Invalid. Zero on Pending.
	Width int
	// Reconsume is nonzero only on Invalid. It names how many of the most
	// recently fed bytes turned out NOT to belong to the invalid subpart
	// and must be re-fed to a freshly Reset Decoder by the caller (who
	// owns the raw byte history, per spec.md §4.1's "maximal invalid
	// subpart" rule). For UTF-8 this is always 0 or 1 (a single
	// non-continuation byte that broke a multi-byte sequence). For UTF-16
	// it is 0 or 2 (a whole code unit that turned out not to pair with a
	// preceding lone high surrogate). UTF-32 units are never reconsumed:
	// each 4-byte unit is self-contained.
	Reconsume int
}

// Decoder is a small per-encoding state machine: feed it bytes one at a
// time, get back Pending/Codepoint/Invalid (spec.md §4.1).
type Decoder struct {
	kind Kind

	// UTF-8 state.
	u8n     int
	u8need  int
	u8first bool
	u8lo    byte
	u8hi    byte
	u8cp    rune

	// UTF-16/UTF-32 state: a fixed-width code unit being assembled, plus
	// (UTF-16 only) a stashed high surrogate awaiting its pair.
	unit        [4]byte
	unitN       int
	pendingHigh rune
	hasHigh     bool
}

// New returns a Decoder for the given encoding. Unknown is not a valid
// argument; detect the encoding first (see DetectKind).
func New(kind Kind) *Decoder {
	return &Decoder{kind: kind}
}

// Kind reports the encoding this Decoder decodes.
func (d *Decoder) Kind() Kind { return d.kind }

// Reset clears all in-flight sequence state, as required after a Decoder
// reports Invalid and the caller is about to reconsume bytes or resume
// after a replaced subpart.
func (d *Decoder) Reset() {
	d.u8n, d.u8need, d.u8first, d.u8lo, d.u8hi, d.u8cp = 0, 0, false, 0, 0, 0
	d.unitN = 0
	d.pendingHigh, d.hasHigh = 0, false
}

// Pending reports whether a sequence is currently in flight (mid-UTF-8
// sequence, mid-code-unit, or a stashed unpaired UTF-16 high surrogate) and
// how many bytes it has accumulated so far. Used at the final push to
// report truncation (spec.md §4.1's "trailing partial units"/"truncated
// sequences ... at end-of-input").
func (d *Decoder) Pending() (pending bool, width int) {
	switch d.kind {
	case UTF8:
		return d.u8need > 0, d.u8n + 1
	case UTF16LE, UTF16BE:
		if d.hasHigh {
			return true, 2 + d.unitN
		}
		return d.unitN > 0, d.unitN
	default: // UTF32LE, UTF32BE
		return d.unitN > 0, d.unitN
	}
}

// Feed consumes one input byte and advances the decoder's state machine.
func (d *Decoder) Feed(b byte) Result {
	switch d.kind {
	case UTF8:
		return d.feedUTF8(b)
	case UTF16LE:
		return d.feedUTF16(b, false)
	case UTF16BE:
		return d.feedUTF16(b, true)
	case UTF32LE:
		return d.feedUTF32(b, false)
	case UTF32BE:
		return d.feedUTF32(b, true)
	default:
		panic("encoding: Feed on Unknown-kind Decoder")
	}
}

func (d *Decoder) feedUTF8(b byte) Result {
	if d.u8need == 0 {
		switch {
		case b < 0x80:
			return Result{Status: Codepoint, Rune: rune(b), Width: 1}
		case b >= 0xC2 && b <= 0xDF:
			d.startUTF8(b&0x1F, 1, 0x80, 0xBF)
		case b == 0xE0:
			d.startUTF8(b&0x0F, 2, 0xA0, 0xBF)
		case b >= 0xE1 && b <= 0xEC:
			d.startUTF8(b&0x0F, 2, 0x80, 0xBF)
		case b == 0xED:
			d.startUTF8(b&0x0F, 2, 0x80, 0x9F)
		case b == 0xEE || b == 0xEF:
			d.startUTF8(b&0x0F, 2, 0x80, 0xBF)
		case b == 0xF0:
			d.startUTF8(b&0x07, 3, 0x90, 0xBF)
		case b >= 0xF1 && b <= 0xF3:
			d.startUTF8(b&0x07, 3, 0x80, 0xBF)
		case b == 0xF4:
			d.startUTF8(b&0x07, 3, 0x80, 0x8F)
		default:
			// 0x80-0xC1 (stray continuation / overlong lead) or 0xF5-0xFF
			// (codepoint above U+10FFFF): the lead byte alone is the
			// maximal invalid subpart.
			return Result{Status: Invalid, Width: 1}
		}
		return Result{Status: Pending}
	}

	lo, hi := byte(0x80), byte(0xBF)
	if d.u8first {
		lo, hi = d.u8lo, d.u8hi
	}
	if b < lo || b > hi {
		width := d.u8n + 1 // lead byte plus any valid continuations so far
		d.Reset()
		return Result{Status: Invalid, Width: width, Reconsume: 1}
	}
	d.u8cp = (d.u8cp << 6) | rune(b&0x3F)
	d.u8n++
	d.u8first = false
	if d.u8n == d.u8need {
		cp := d.u8cp
		width := d.u8n + 1
		d.Reset()
		return Result{Status: Codepoint, Rune: cp, Width: width}
	}
	return Result{Status: Pending}
}

func (d *Decoder) startUTF8(leadBits byte, need int, lo, hi byte) {
	d.u8cp = rune(leadBits)
	d.u8need = need
	d.u8n = 0
	d.u8first = true
	d.u8lo, d.u8hi = lo, hi
}

func (d *Decoder) feedUTF16(b byte, big bool) Result {
	d.unit[d.unitN] = b
	d.unitN++
	if d.unitN < 2 {
		return Result{Status: Pending}
	}
	var u uint16
	if big {
		u = uint16(d.unit[0])<<8 | uint16(d.unit[1])
	} else {
		u = uint16(d.unit[1])<<8 | uint16(d.unit[0])
	}
	d.unitN = 0
	r := rune(u)

	switch {
	case isHighSurrogate(r):
		if d.hasHigh {
			// Previous high surrogate was itself unpaired; the new one
			// replaces it as the pending high and must be reconsumed
			// fresh after we report the old one as invalid.
			d.hasHigh = false
			return Result{Status: Invalid, Width: 2, Reconsume: 2}
		}
		d.pendingHigh = r
		d.hasHigh = true
		return Result{Status: Pending}
	case isLowSurrogate(r):
		if d.hasHigh {
			cp := 0x10000 + (d.pendingHigh-0xD800)<<10 + (r - 0xDC00)
			d.hasHigh = false
			return Result{Status: Codepoint, Rune: cp, Width: 4}
		}
		// Lone low surrogate: a whole self-contained invalid unit.
		return Result{Status: Invalid, Width: 2}
	default:
		if d.hasHigh {
			d.hasHigh = false
			return Result{Status: Invalid, Width: 2, Reconsume: 2}
		}
		return Result{Status: Codepoint, Rune: r, Width: 2}
	}
}

func (d *Decoder) feedUTF32(b byte, big bool) Result {
	d.unit[d.unitN] = b
	d.unitN++
	if d.unitN < 4 {
		return Result{Status: Pending}
	}
	var v uint32
	if big {
		v = uint32(d.unit[0])<<24 | uint32(d.unit[1])<<16 | uint32(d.unit[2])<<8 | uint32(d.unit[3])
	} else {
		v = uint32(d.unit[3])<<24 | uint32(d.unit[2])<<16 | uint32(d.unit[1])<<8 | uint32(d.unit[0])
	}
	d.unitN = 0
	r := rune(v)
	if v > maxCodepoint || isSurrogate(r) {
		return Result{Status: Invalid, Width: 4}
	}
	return Result{Status: Codepoint, Rune: r, Width: 4}
}
