package jsonsax

import (
	"github.com/mcvoid/jsonsax/encoding"
	"github.com/mcvoid/jsonsax/internal/frame"
	"github.com/mcvoid/jsonsax/internal/lexer"
)

type parserState int

const (
	stateRunning parserState = iota
	stateFinishedOK
	stateFinishedError
)

// byteRing remembers the last two raw input bytes, the most a
// encoding.Decoder ever asks to have reconsumed (spec.md §4.1).
type byteRing struct {
	buf [2]byte
	n   int
}

func (r *byteRing) push(b byte) {
	if r.n < 2 {
		r.buf[r.n] = b
		r.n++
		return
	}
	r.buf[0] = r.buf[1]
	r.buf[1] = b
}

func (r *byteRing) lastN(n int) []byte {
	return r.buf[r.n-n : r.n]
}

// Parser is a streaming, event-driven JSON reader (spec.md §4.2/§4.3): push
// bytes in, receive Handler callbacks out, one push at a time, resumable at
// any byte boundary.
type Parser struct {
	settings Settings
	handler  Handler

	state parserState
	err   *Error

	dec       *encoding.Decoder
	prefixBuf []byte // buffered raw bytes while the encoding is undetermined
	ring      byteRing
	byteOffset int64

	trk   tracker
	stack frame.Stack
	lex   *lexer.Lexer

	pendingLoc    Location
	haveValue     bool
	insideHandler bool
}

// NewParser constructs a Parser with the given settings and handler.
// handler may be nil to validate a document without receiving events.
func NewParser(settings Settings, handler Handler) *Parser {
	if settings.OutputEncoding == encoding.Unknown {
		settings.OutputEncoding = encoding.UTF8
	}
	p := &Parser{settings: settings, handler: handler}
	p.init()
	return p
}

func (p *Parser) init() {
	p.state = stateRunning
	p.err = nil
	p.dec = nil
	p.prefixBuf = nil
	p.ring = byteRing{}
	p.byteOffset = 0
	p.trk = tracker{}
	p.stack = frame.Stack{Allocator: p.settings.Allocator}
	p.pendingLoc = Location{}
	p.haveValue = false
	p.insideHandler = false
	p.lex = lexer.New(lexer.Settings{
		AllowComments:       p.settings.AllowComments,
		AllowSpecialNumbers: p.settings.AllowSpecialNumbers,
		AllowHexNumbers:     p.settings.AllowHexNumbers,
		MaxNumberLen:        p.settings.MaxNumberLength,
		MaxStringLen:        p.settings.MaxOutputStringLength,
	}, encoding.NewEncoder(p.settings.OutputEncoding))
}

// Reset returns the Parser to its initial state, ready for a new document.
func (p *Parser) Reset() error {
	if p.insideHandler {
		return ErrReentrant
	}
	p.init()
	return nil
}

// Err returns the terminal error, or nil if the parser is still running or
// finished successfully.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// TokenLocation returns the location latched for the token currently (or
// most recently) being processed. Safe to call from inside a handler.
func (p *Parser) TokenLocation() Location { return p.pendingLoc }

// Settings returns the settings this Parser was constructed with.
func (p *Parser) Settings() Settings { return p.settings }

// Push feeds the next chunk of raw input bytes. isFinal marks the last
// chunk: the parser closes any in-flight number/keyword token and reports
// ExpectedMoreTokens if the document is structurally incomplete.
func (p *Parser) Push(data []byte, isFinal bool) error {
	if p.insideHandler {
		return ErrReentrant
	}
	switch p.state {
	case stateFinishedError:
		return p.err
	case stateFinishedOK:
		return nil
	}
	for _, b := range data {
		if err := p.feedByte(b); err != nil {
			return err
		}
		if p.state != stateRunning {
			return p.err
		}
	}
	if isFinal {
		return p.finish()
	}
	return nil
}

func (p *Parser) feedByte(b byte) error {
	p.byteOffset++
	if p.dec == nil {
		p.prefixBuf = append(p.prefixBuf, b)
		return p.tryResolveEncoding(false)
	}
	return p.processRawByte(b, false)
}

func (p *Parser) tryResolveEncoding(final bool) error {
	if p.settings.InputEncoding != encoding.Unknown {
		return p.tryResolveExplicit(final)
	}
	det, err := encoding.DetectKind(p.prefixBuf, final)
	if err != nil {
		if encoding.NeedsMoreBytes(err) {
			return nil
		}
		return p.fail(ErrorExpectedMoreTokens, p.liveLocation())
	}
	return p.resolveDetection(det)
}

func (p *Parser) tryResolveExplicit(final bool) error {
	kind := p.settings.InputEncoding
	bom := encoding.NewEncoder(kind).BOM()
	if len(p.prefixBuf) < len(bom) && !final {
		return nil
	}
	hasBOM := len(p.prefixBuf) >= len(bom) && bytesEqual(p.prefixBuf[:len(bom)], bom)
	return p.resolveDetection(encoding.Detection{Kind: kind, HasBOM: hasBOM, BOMLen: len(bom)})
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *Parser) resolveDetection(det encoding.Detection) error {
	if det.HasBOM && !p.settings.AllowBOM {
		return p.fail(ErrorBOMNotAllowed, Location{})
	}
	p.dec = encoding.New(det.Kind)
	if err := p.emitEncodingDetected(det.Kind); err != nil {
		return err
	}
	buffered := p.prefixBuf
	p.prefixBuf = nil
	skip := 0
	if det.HasBOM {
		skip = det.BOMLen
	}
	for i := skip; i < len(buffered); i++ {
		// The buffered bytes start at offset 0; restore each one's own
		// offset so the locations it produces point at it.
		p.byteOffset = int64(i + 1)
		if err := p.processRawByte(buffered[i], false); err != nil {
			return err
		}
		if p.state != stateRunning {
			return p.err
		}
	}
	return nil
}

func (p *Parser) emitEncodingDetected(kind encoding.Kind) error {
	if p.handler == nil {
		return nil
	}
	p.insideHandler = true
	res := p.handler.EncodingDetected(kind)
	p.insideHandler = false
	if res == Abort {
		return p.fail(ErrorAbortedByHandler, Location{})
	}
	return nil
}

// processRawByte decodes one raw byte. fromHistory is true only when
// replaying bytes named by a decoder Invalid result's Reconsume count; such
// bytes are not pushed back onto the ring, since they are already there.
func (p *Parser) processRawByte(b byte, fromHistory bool) error {
	if !fromHistory {
		p.ring.push(b)
	}
	res := p.dec.Feed(b)
	switch res.Status {
	case encoding.Pending:
		return nil
	case encoding.Codepoint:
		return p.dispatchCodepoint(res.Rune, p.byteOffset-int64(res.Width), false)
	case encoding.Invalid:
		return p.handleInvalid(res)
	default:
		return nil
	}
}

func (p *Parser) handleInvalid(res encoding.Result) error {
	start := p.byteOffset - int64(res.Width) - int64(res.Reconsume)
	loc := Location{Byte: start, Line: p.trk.line, Column: p.trk.column, Depth: p.stack.Depth()}

	if p.settings.ReplaceInvalidEncodingSequences && p.lex.InString() {
		if err := p.dispatchCodepoint(0xFFFD, start, true); err != nil {
			return err
		}
	} else {
		return p.fail(ErrorInvalidEncodingSequence, loc)
	}

	if res.Reconsume > 0 {
		replay := append([]byte(nil), p.ring.lastN(res.Reconsume)...)
		for _, rb := range replay {
			if err := p.processRawByte(rb, true); err != nil {
				return err
			}
			if p.state != stateRunning {
				return p.err
			}
		}
	}
	return nil
}

// dispatchCodepoint latches a token-start Location (when the lexer is at a
// boundary), advances line/column tracking, and feeds r to the lexer,
// looping to handle the lexer's own codepoint-level Reconsume (a terminator
// that belongs to the next token).
func (p *Parser) dispatchCodepoint(r rune, start int64, replaced bool) error {
	line, col := p.trk.line, p.trk.column
	if p.lex.AtBoundary() {
		p.pendingLoc = Location{Byte: start, Line: line, Column: col, Depth: p.stack.Depth()}
	}
	p.trk.observe(r)

	for {
		res := p.lex.Feed(r, replaced)
		switch res.Event {
		case lexer.EvNone:
			return nil
		case lexer.EvError:
			return p.fail(p.mapLexErr(res.Err), p.pendingLoc)
		case lexer.EvToken:
			tokLoc := p.pendingLoc
			if err := p.processToken(res.Token, tokLoc); err != nil {
				return err
			}
			if p.state != stateRunning {
				return p.err
			}
			if !res.Reconsume {
				return nil
			}
			if p.lex.AtBoundary() {
				p.pendingLoc = Location{Byte: start, Line: line, Column: col, Depth: p.stack.Depth()}
			}
			// loop: re-feed r as the start of the next token
		}
	}
}

func (p *Parser) mapLexErr(e lexer.ErrKind) ErrorKind {
	switch e {
	case lexer.ErrUnknownToken:
		return ErrorUnknownToken
	case lexer.ErrIncompleteToken:
		return ErrorIncompleteToken
	case lexer.ErrUnescapedControlCharacter:
		return ErrorUnescapedControlCharacter
	case lexer.ErrInvalidEscapeSequence:
		return ErrorInvalidEscapeSequence
	case lexer.ErrUnpairedSurrogateEscapeSequence:
		return ErrorUnpairedSurrogateEscapeSequence
	case lexer.ErrTooLongString:
		return ErrorTooLongString
	case lexer.ErrInvalidNumber:
		return ErrorInvalidNumber
	case lexer.ErrTooLongNumber:
		return ErrorTooLongNumber
	default:
		return ErrorUnknownToken
	}
}

func (p *Parser) liveLocation() Location {
	return Location{Byte: p.byteOffset, Line: p.trk.line, Column: p.trk.column, Depth: p.stack.Depth()}
}

func (p *Parser) fail(kind ErrorKind, loc Location) error {
	e := &Error{Kind: kind, Location: loc}
	p.err = e
	p.state = stateFinishedError
	return e
}

// finish closes out the final push: resolves the encoding if input ended
// before it could be determined, checks for a truncated encoding sequence,
// resolves any in-flight lexer token, and checks structural completeness.
func (p *Parser) finish() error {
	if p.dec == nil {
		if err := p.tryResolveEncoding(true); err != nil {
			return err
		}
		if p.state != stateRunning {
			return p.err
		}
	}

	if p.dec != nil {
		if pending, width := p.dec.Pending(); pending {
			loc := Location{Byte: p.byteOffset - int64(width), Line: p.trk.line, Column: p.trk.column, Depth: p.stack.Depth()}
			return p.fail(ErrorInvalidEncodingSequence, loc)
		}
	}

	fin := p.lex.Final()
	switch fin.Event {
	case lexer.EvError:
		return p.fail(p.mapLexErr(fin.Err), p.pendingLoc)
	case lexer.EvToken:
		if err := p.processToken(fin.Token, p.pendingLoc); err != nil {
			return err
		}
		if p.state != stateRunning {
			return p.err
		}
	}

	if p.stack.Depth() > 0 || !p.haveValue {
		return p.fail(ErrorExpectedMoreTokens, p.liveLocation())
	}
	p.state = stateFinishedOK
	return nil
}

// callHandler runs fn (a closure invoking exactly one Handler method) under
// the re-entrancy guard and turns an Abort result into the terminal error.
func (p *Parser) callHandler(loc Location, fn func() Result) (Result, error) {
	if p.handler == nil {
		return Continue, nil
	}
	p.insideHandler = true
	res := fn()
	p.insideHandler = false
	if res == Abort {
		return res, p.fail(ErrorAbortedByHandler, loc)
	}
	return res, nil
}

// processToken dispatches one completed lexical token through the grammar
// machine (spec.md §4.2/§4.3): deciding what token is legal at the current
// frame substate, emitting the corresponding handler event, and advancing
// the substate or nesting stack.
func (p *Parser) processToken(tok lexer.Token, loc Location) error {
	if p.stack.Depth() == 0 {
		if p.haveValue {
			return p.fail(ErrorUnexpectedToken, loc)
		}
		return p.startValue(tok, loc)
	}

	top := p.stack.Top()
	switch top.Kind {
	case frame.Object:
		return p.processObjectToken(tok, loc, top)
	case frame.Array:
		return p.processArrayToken(tok, loc, top)
	default:
		panic("jsonsax: unreachable frame kind")
	}
}

func (p *Parser) processObjectToken(tok lexer.Token, loc Location, top *frame.Frame) error {
	switch top.State {
	case frame.Empty:
		if tok.Kind == lexer.RBrace {
			return p.closeContainer(loc)
		}
		return p.beginMemberName(tok, loc, top)

	case frame.ExpectMemberName:
		// Reached either from Empty's "not a closer" branch or after a
		// comma; a closer is legal here too, but only right after a comma
		// and only when allow_trailing_commas is set. Distinguishing the
		// two arrivals isn't needed: an empty object never reaches this
		// state with an RBrace (Empty handles that directly above), so an
		// RBrace here always follows a comma.
		if tok.Kind == lexer.RBrace && p.settings.AllowTrailingCommas {
			return p.closeContainer(loc)
		}
		return p.beginMemberName(tok, loc, top)

	case frame.ExpectColon:
		if tok.Kind != lexer.Colon {
			return p.fail(ErrorUnexpectedToken, loc)
		}
		top.State = frame.ExpectValue
		return nil

	case frame.ExpectValue:
		return p.startValue(tok, loc)

	case frame.ExpectCommaOrEnd:
		switch tok.Kind {
		case lexer.RBrace:
			return p.closeContainer(loc)
		case lexer.Comma:
			top.State = frame.ExpectMemberName
			return nil
		default:
			return p.fail(ErrorUnexpectedToken, loc)
		}

	default:
		panic("jsonsax: unreachable object substate")
	}
}

func (p *Parser) processArrayToken(tok lexer.Token, loc Location, top *frame.Frame) error {
	switch top.State {
	case frame.Empty:
		if tok.Kind == lexer.RBracket {
			return p.closeContainer(loc)
		}
		if !isValueStartToken(tok.Kind) {
			return p.fail(ErrorUnexpectedToken, loc)
		}
		if err := p.beginArrayItem(loc, top); err != nil {
			return err
		}
		return p.startValue(tok, loc)

	case frame.ExpectValue:
		// Reached only after a comma (see processToken's afterValue, which
		// never sets Empty back once an item has started).
		if tok.Kind == lexer.RBracket && p.settings.AllowTrailingCommas {
			return p.closeContainer(loc)
		}
		if !isValueStartToken(tok.Kind) {
			return p.fail(ErrorUnexpectedToken, loc)
		}
		if err := p.beginArrayItem(loc, top); err != nil {
			return err
		}
		return p.startValue(tok, loc)

	case frame.ExpectCommaOrEnd:
		switch tok.Kind {
		case lexer.RBracket:
			return p.closeContainer(loc)
		case lexer.Comma:
			top.State = frame.ExpectValue
			return nil
		default:
			return p.fail(ErrorUnexpectedToken, loc)
		}

	default:
		panic("jsonsax: unreachable array substate")
	}
}

func isValueStartToken(k lexer.Kind) bool {
	switch k {
	case lexer.LBrace, lexer.LBracket, lexer.String, lexer.Number,
		lexer.Null, lexer.True, lexer.False, lexer.NaN, lexer.Infinity, lexer.NegInfinity:
		return true
	default:
		return false
	}
}

// startValue dispatches a value-starting token: a container opener, or a
// scalar handed straight to the matching Handler method.
func (p *Parser) startValue(tok lexer.Token, loc Location) error {
	switch tok.Kind {
	case lexer.LBrace:
		return p.openContainer(frame.Object, loc)
	case lexer.LBracket:
		return p.openContainer(frame.Array, loc)
	case lexer.String:
		_, err := p.callHandler(loc, func() Result {
			return p.handler.String(tok.Text, stringAttrsFromLexer(tok.StrAttrs))
		})
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.Number:
		_, err := p.callHandler(loc, func() Result {
			return p.handler.Number(tok.Text, numberAttrsFromLexer(tok.NumAttrs))
		})
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.Null:
		_, err := p.callHandler(loc, func() Result { return p.handler.Null() })
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.True:
		_, err := p.callHandler(loc, func() Result { return p.handler.Boolean(true) })
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.False:
		_, err := p.callHandler(loc, func() Result { return p.handler.Boolean(false) })
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.NaN:
		_, err := p.callHandler(loc, func() Result { return p.handler.SpecialNumber(NaN) })
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.Infinity:
		_, err := p.callHandler(loc, func() Result { return p.handler.SpecialNumber(Infinity) })
		if err != nil {
			return err
		}
		return p.afterValue()
	case lexer.NegInfinity:
		_, err := p.callHandler(loc, func() Result { return p.handler.SpecialNumber(NegativeInfinity) })
		if err != nil {
			return err
		}
		return p.afterValue()
	default:
		return p.fail(ErrorUnexpectedToken, loc)
	}
}

// afterValue runs once a value (scalar immediately, or a container at the
// moment it closes) is fully formed: it either records the top-level
// document as complete, or advances the enclosing frame to expect a
// comma or the matching closer.
func (p *Parser) afterValue() error {
	if p.stack.Depth() == 0 {
		p.haveValue = true
		return nil
	}
	p.stack.Top().State = frame.ExpectCommaOrEnd
	return nil
}

func (p *Parser) openContainer(kind frame.Kind, loc Location) error {
	var err error
	if kind == frame.Object {
		_, err = p.callHandler(loc, func() Result { return p.handler.StartObject() })
	} else {
		_, err = p.callHandler(loc, func() Result { return p.handler.StartArray() })
	}
	if err != nil {
		return err
	}
	if pushErr := p.stack.Push(kind); pushErr != nil {
		return p.fail(ErrorOutOfMemory, loc)
	}
	return nil
}

func (p *Parser) closeContainer(loc Location) error {
	popped := p.stack.Pop()
	var err error
	if popped.Kind == frame.Object {
		_, err = p.callHandler(loc, func() Result { return p.handler.EndObject() })
	} else {
		_, err = p.callHandler(loc, func() Result { return p.handler.EndArray() })
	}
	if err != nil {
		return err
	}
	return p.afterValue()
}

// beginMemberName processes a String token in object-member-name position:
// duplicate detection (built-in tracking, a cooperative TreatAsDuplicate
// result, or both) followed by the ObjectMember event.
func (p *Parser) beginMemberName(tok lexer.Token, loc Location, top *frame.Frame) error {
	if tok.Kind != lexer.String {
		return p.fail(ErrorUnexpectedToken, loc)
	}
	// Built-in tracking short-circuits before the handler is even called:
	// a name already seen never reaches ObjectMember a second time.
	if p.settings.TrackObjectMembers && top.SeenMember(tok.Text) {
		return p.fail(ErrorDuplicateObjectMember, loc)
	}
	attrs := stringAttrsFromLexer(tok.StrAttrs)
	res, err := p.callHandler(loc, func() Result { return p.handler.ObjectMember(tok.Text, attrs) })
	if err != nil {
		return err
	}
	if res == TreatAsDuplicate {
		return p.fail(ErrorDuplicateObjectMember, loc)
	}
	if p.settings.TrackObjectMembers {
		top.RecordMember(tok.Text)
	}
	top.State = frame.ExpectColon
	return nil
}

// beginArrayItem fires the ArrayItem event that precedes every array
// element's value event, first true exactly on the first element.
func (p *Parser) beginArrayItem(loc Location, top *frame.Frame) error {
	first := top.FirstElement
	_, err := p.callHandler(loc, func() Result { return p.handler.ArrayItem(first) })
	if err != nil {
		return err
	}
	top.FirstElement = false
	return nil
}
