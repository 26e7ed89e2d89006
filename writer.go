package jsonsax

import (
	"github.com/mcvoid/jsonsax/encoding"
	"github.com/mcvoid/jsonsax/internal/frame"
)

type writerState int

const (
	writerRunning writerState = iota
	writerFinishedError
)

// Writer is the streaming mirror of Parser (spec.md §4.5): a sequence of
// primitive Write calls, each either emitting bytes through the
// OutputHandler or returning a grammar/validation error without emitting
// anything.
type Writer struct {
	settings WriterSettings
	out      OutputHandler

	state writerState
	err   *Error

	enc   *encoding.Encoder
	stack frame.Stack

	// wroteAnything tracks whether any top-level value has been written
	// yet, mirroring the parser's haveValue.
	wroteAnything bool
	// afterMemberName is true only immediately after a member-name string
	// has been written, the one moment WriteColon is legal.
	afterMemberName bool

	insideHandler bool
}

// NewWriter constructs a Writer targeting the given settings and output
// handler.
func NewWriter(settings WriterSettings, out OutputHandler) *Writer {
	if settings.OutputEncoding == encoding.Unknown {
		settings.OutputEncoding = encoding.UTF8
	}
	return &Writer{
		settings: settings,
		out:      out,
		enc:      encoding.NewEncoder(settings.OutputEncoding),
		stack:    frame.Stack{Allocator: settings.Allocator},
	}
}

func (w *Writer) Err() error {
	if w.err == nil {
		return nil
	}
	return w.err
}

func (w *Writer) fail(kind ErrorKind) error {
	e := &Error{Kind: kind, Location: Location{Depth: w.stack.Depth()}}
	w.err = e
	w.state = writerFinishedError
	return e
}

func (w *Writer) emit(data []byte) error {
	if w.out == nil {
		return nil
	}
	w.insideHandler = true
	res := w.out.OutputBytes(data)
	w.insideHandler = false
	if res == Abort {
		return w.fail(ErrorAbortedByHandler)
	}
	return nil
}

func (w *Writer) checkWritable() error {
	if w.insideHandler {
		return ErrReentrant
	}
	if w.state == writerFinishedError {
		return w.err
	}
	return nil
}

// beforeValue validates that a value (scalar or container opener) is legal
// at the writer's current position, per the same grammar the parser
// enforces: at most one top-level value, alternating member-name/value
// inside objects, and plain values inside arrays.
func (w *Writer) beforeValue() error {
	if w.stack.Depth() == 0 {
		if w.wroteAnything {
			return w.fail(ErrorUnexpectedToken)
		}
		return nil
	}
	top := w.stack.Top()
	switch top.Kind {
	case frame.Object:
		if top.State != frame.ExpectValue {
			return w.fail(ErrorUnexpectedToken)
		}
	case frame.Array:
		if top.State != frame.Empty && top.State != frame.ExpectValue {
			return w.fail(ErrorUnexpectedToken)
		}
	}
	return nil
}

func (w *Writer) afterValueWritten() {
	w.afterMemberName = false
	if w.stack.Depth() == 0 {
		w.wroteAnything = true
		return
	}
	top := w.stack.Top()
	top.State = frame.ExpectCommaOrEnd
}

func (w *Writer) WriteNull() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.emit([]byte("null")); err != nil {
		return err
	}
	w.afterValueWritten()
	return nil
}

func (w *Writer) WriteBoolean(v bool) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	lit := "false"
	if v {
		lit = "true"
	}
	if err := w.emit([]byte(lit)); err != nil {
		return err
	}
	w.afterValueWritten()
	return nil
}

func (w *Writer) WriteSpecialNumber(kind SpecialNumberKind) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.emit([]byte(kind.String())); err != nil {
		return err
	}
	w.afterValueWritten()
	return nil
}

// WriteString writes a string value (or, inside an object at
// ExpectMemberName, a member name — the writer distinguishes the two by
// grammar position exactly as the parser's lexer/grammar split does).
func (w *Writer) WriteString(value []byte, sourceEncoding encoding.Kind) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if w.stack.Depth() > 0 && w.stack.Top().Kind == frame.Object {
		switch w.stack.Top().State {
		case frame.Empty, frame.ExpectMemberName:
			return w.writeMemberName(value, sourceEncoding)
		}
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	encoded, err := w.encodeStringLiteral(value, sourceEncoding)
	if err != nil {
		return err
	}
	if err := w.emit(encoded); err != nil {
		return err
	}
	w.afterValueWritten()
	return nil
}

func (w *Writer) writeMemberName(value []byte, sourceEncoding encoding.Kind) error {
	encoded, err := w.encodeStringLiteral(value, sourceEncoding)
	if err != nil {
		return err
	}
	if err := w.emit(encoded); err != nil {
		return err
	}
	w.stack.Top().State = frame.ExpectColon
	w.afterMemberName = true
	return nil
}

// encodeStringLiteral transcodes value from sourceEncoding, escaping `"`,
// `\`, ASCII control characters, and U+2028/U+2029, and produces the
// quoted JSON string literal bytes (spec.md §4.5).
func (w *Writer) encodeStringLiteral(value []byte, sourceEncoding encoding.Kind) ([]byte, error) {
	if sourceEncoding == encoding.Unknown {
		sourceEncoding = encoding.UTF8
	}
	dec := encoding.New(sourceEncoding)
	out := append([]byte(nil), '"')
	for i := 0; i < len(value); i++ {
		res := dec.Feed(value[i])
		switch res.Status {
		case encoding.Pending:
			continue
		case encoding.Invalid:
			if w.settings.ReplaceInvalidEncodingSequences {
				out = w.appendEscaped(out, 0xFFFD)
				// Re-feed the bytes that did not belong to the invalid
				// subpart.
				dec.Reset()
				i -= res.Reconsume
				continue
			}
			return nil, w.fail(ErrorInvalidEncodingSequence)
		case encoding.Codepoint:
			out = w.appendEscaped(out, res.Rune)
		}
	}
	if pending, _ := dec.Pending(); pending {
		if w.settings.ReplaceInvalidEncodingSequences {
			out = w.appendEscaped(out, 0xFFFD)
		} else {
			return nil, w.fail(ErrorInvalidEncodingSequence)
		}
	}
	out = append(out, '"')
	return out, nil
}

func (w *Writer) appendEscaped(dst []byte, r rune) []byte {
	switch r {
	case '"':
		return append(dst, '\\', '"')
	case '\\':
		return append(dst, '\\', '\\')
	case '\b':
		return append(dst, '\\', 'b')
	case '\f':
		return append(dst, '\\', 'f')
	case '\n':
		return append(dst, '\\', 'n')
	case '\r':
		return append(dst, '\\', 'r')
	case '\t':
		return append(dst, '\\', 't')
	}
	if r < 0x20 || r == 0x2028 || r == 0x2029 {
		return appendUnicodeEscape(dst, r)
	}
	enc, err := w.enc.Append(dst, r)
	if err != nil {
		return appendUnicodeEscape(dst, 0xFFFD)
	}
	return enc
}

const hexDigits = "0123456789abcdef"

func appendUnicodeEscape(dst []byte, r rune) []byte {
	dst = append(dst, '\\', 'u')
	for shift := 12; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(r>>uint(shift))&0xF])
	}
	return dst
}

// WriteNumber writes the verbatim ASCII number literal text, after
// validating it against the same grammar the lexer accepts.
func (w *Writer) WriteNumber(text []byte) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if !validNumberLiteral(text) {
		return w.fail(ErrorInvalidNumber)
	}
	if err := w.emit(text); err != nil {
		return err
	}
	w.afterValueWritten()
	return nil
}

// validNumberLiteral checks text against the decimal grammar (with an
// optional hex-literal form), mirroring internal/lexer's number grammar.
func validNumberLiteral(text []byte) bool {
	i, n := 0, len(text)
	if n == 0 {
		return false
	}
	neg := false
	if text[0] == '-' {
		neg = true
		i++
	}
	if i >= n {
		return false
	}
	if text[i] == '0' && i+2 < n && (text[i+1] == 'x' || text[i+1] == 'X') {
		if neg {
			return false
		}
		i += 2
		if i >= n {
			return false
		}
		for ; i < n; i++ {
			if !isHexDigitByte(text[i]) {
				return false
			}
		}
		return true
	}
	start := i
	if text[i] == '0' {
		i++
	} else {
		for i < n && isDigitByte(text[i]) {
			i++
		}
	}
	if i == start {
		return false
	}
	if i < n && text[i] == '.' {
		i++
		fracStart := i
		for i < n && isDigitByte(text[i]) {
			i++
		}
		if i == fracStart {
			return false
		}
	}
	if i < n && (text[i] == 'e' || text[i] == 'E') {
		i++
		if i < n && (text[i] == '+' || text[i] == '-') {
			i++
		}
		expStart := i
		for i < n && isDigitByte(text[i]) {
			i++
		}
		if i == expStart {
			return false
		}
	}
	return i == n
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isHexDigitByte(b byte) bool {
	return isDigitByte(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (w *Writer) WriteStartObject() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.emit([]byte("{")); err != nil {
		return err
	}
	if pushErr := w.stack.Push(frame.Object); pushErr != nil {
		return w.fail(ErrorOutOfMemory)
	}
	return nil
}

func (w *Writer) WriteStartArray() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.emit([]byte("[")); err != nil {
		return err
	}
	if pushErr := w.stack.Push(frame.Array); pushErr != nil {
		return w.fail(ErrorOutOfMemory)
	}
	return nil
}

func (w *Writer) WriteEndObject() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if w.stack.Depth() == 0 || w.stack.Top().Kind != frame.Object {
		return w.fail(ErrorUnexpectedToken)
	}
	top := w.stack.Top()
	if top.State != frame.Empty && top.State != frame.ExpectCommaOrEnd {
		return w.fail(ErrorUnexpectedToken)
	}
	if err := w.emit([]byte("}")); err != nil {
		return err
	}
	w.stack.Pop()
	w.afterValueWritten()
	return nil
}

func (w *Writer) WriteEndArray() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if w.stack.Depth() == 0 || w.stack.Top().Kind != frame.Array {
		return w.fail(ErrorUnexpectedToken)
	}
	top := w.stack.Top()
	if top.State != frame.Empty && top.State != frame.ExpectCommaOrEnd {
		return w.fail(ErrorUnexpectedToken)
	}
	if err := w.emit([]byte("]")); err != nil {
		return err
	}
	w.stack.Pop()
	w.afterValueWritten()
	return nil
}

// WriteColon is legal only immediately after a member-name string.
func (w *Writer) WriteColon() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if !w.afterMemberName {
		return w.fail(ErrorUnexpectedToken)
	}
	if err := w.emit([]byte(":")); err != nil {
		return err
	}
	w.afterMemberName = false
	w.stack.Top().State = frame.ExpectValue
	return nil
}

// WriteComma is legal only between two elements: after a completed value,
// with more expected (ExpectCommaOrEnd), inside an open container.
func (w *Writer) WriteComma() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if w.stack.Depth() == 0 {
		return w.fail(ErrorUnexpectedToken)
	}
	top := w.stack.Top()
	if top.State != frame.ExpectCommaOrEnd {
		return w.fail(ErrorUnexpectedToken)
	}
	if err := w.emit([]byte(",")); err != nil {
		return err
	}
	if top.Kind == frame.Object {
		top.State = frame.ExpectMemberName
	} else {
		top.State = frame.ExpectValue
	}
	return nil
}

// WriteSpace writes n ASCII space bytes. Always legal.
func (w *Writer) WriteSpace(n int) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}
	return w.emit(buf)
}

// WriteNewLine writes one line break, LF or CRLF per use_crlf. Always
// legal.
func (w *Writer) WriteNewLine() error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if w.settings.UseCRLF {
		return w.emit([]byte("\r\n"))
	}
	return w.emit([]byte("\n"))
}
