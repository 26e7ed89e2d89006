package jsonsax

// Location identifies a point in the input or output stream: the raw byte
// offset, the 0-based line/column counted over decoded characters, and the
// current container nesting depth (spec.md §3).
type Location struct {
	Byte   int64
	Line   int
	Column int
	Depth  int
}

// tracker advances line/column across decoded codepoints. A standalone CR,
// a standalone LF, or the pair CRLF each count as a single line break
// (spec.md §4.1's newline handling).
type tracker struct {
	line, column int
	crPending    bool
}

func (t *tracker) observe(r rune) {
	switch r {
	case '\r':
		t.line++
		t.column = 0
		t.crPending = true
	case '\n':
		if !t.crPending {
			t.line++
			t.column = 0
		}
		t.crPending = false
	default:
		t.column++
		t.crPending = false
	}
}
