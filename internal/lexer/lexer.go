package lexer

import "github.com/mcvoid/jsonsax/encoding"

type state int

const (
	stBoundary state = iota
	stNumber
	stKeyword
	stKeywordTermCheck
	stBadRun
	stString
	stStringEscape
	stStringUnicode
	stStringUnicodeExpectBackslash
	stStringUnicodeExpectU
	stCommentStart
	stLineComment
	stBlockComment
	stBlockCommentStar
)

// Settings configures the subset of spec.md §6's options the lexer itself
// needs to know about; grammar-level options like allow_trailing_commas
// live in the parser's grammar machine instead.
type Settings struct {
	AllowComments       bool
	AllowSpecialNumbers bool
	AllowHexNumbers     bool
	MaxNumberLen        int // 0 = unbounded
	MaxStringLen        int // 0 = unbounded; counts output-encoded bytes
}

// Event classifies what a Feed/Final call produced.
type Event int

const (
	EvNone Event = iota
	EvToken
	EvError
)

// StepResult is returned by every Feed/Final call.
type StepResult struct {
	Event Event
	Token Token
	Err   ErrKind
	// Reconsume is true when the codepoint that triggered this result is
	// not part of the completed token (the terminator following a number
	// or keyword) and must be re-presented after the caller has consumed
	// the token. It is never true alongside EvError: an error ends the
	// parse, so nothing is ever reconsumed after one (spec.md §4.6/§7).
	Reconsume bool
}

// Lexer is a one-codepoint-at-a-time JSON tokenizer (spec.md §4.2). It is
// fed already-decoded codepoints; the encoding concern stays in the
// parser's encoding.Decoder (spec.md §2 item 4).
type Lexer struct {
	cfg   Settings
	enc   *encoding.Encoder
	state state

	numPhase numPhase
	numText  []byte
	numAttrs NumberAttrs

	kwLiteral string
	kwPos     int
	kwKind    Kind

	badText []byte

	strBuf              []byte
	strAttrs            StringAttrs
	escHi               rune
	hexAcc              rune
	hexCount             int
	pendingHighSurrogate bool
}

// New returns a Lexer that re-encodes string payloads through enc.
func New(cfg Settings, enc *encoding.Encoder) *Lexer {
	return &Lexer{cfg: cfg, enc: enc, state: stBoundary}
}

// AtBoundary reports whether the next codepoint fed begins a new token, as
// opposed to continuing one already in progress. The parser latches the
// current Location as a pending token's start exactly when this is true,
// before calling Feed.
func (l *Lexer) AtBoundary() bool { return l.state == stBoundary }

// InString reports whether the lexer is anywhere inside a string literal
// (including mid-escape). The parser consults this to decide whether a
// decoder Invalid result should be replaced with U+FFFD (inside strings)
// or remain a structural InvalidEncodingSequence error (spec.md §4.1).
func (l *Lexer) InString() bool {
	switch l.state {
	case stString, stStringEscape, stStringUnicode, stStringUnicodeExpectBackslash, stStringUnicodeExpectU:
		return true
	default:
		return false
	}
}

func (l *Lexer) reset() { l.state = stBoundary }

func isWhitespace(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D || r == 0x20
}

func isPunct(r rune) (Kind, bool) {
	switch r {
	case '{':
		return LBrace, true
	case '}':
		return RBrace, true
	case '[':
		return LBracket, true
	case ']':
		return RBracket, true
	case ':':
		return Colon, true
	case ',':
		return Comma, true
	}
	return 0, false
}

// isTerminator reports whether r may legally follow a number or keyword
// token: whitespace, punctuation, or (checked by the caller) end-of-input.
func isTerminator(r rune) bool {
	if isWhitespace(r) {
		return true
	}
	_, ok := isPunct(r)
	return ok
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Feed consumes one decoded codepoint. replaced is true only when the
// parser is substituting U+FFFD for a malformed byte sequence inside a
// string literal (replace_invalid_encoding_sequences); it folds into the
// emitted string's contains-replaced-sequence attribute.
func (l *Lexer) Feed(r rune, replaced bool) StepResult {
	switch l.state {
	case stBoundary:
		return l.feedBoundary(r)
	case stNumber:
		return l.feedNumber(r)
	case stKeyword:
		return l.feedKeyword(r)
	case stKeywordTermCheck:
		return l.feedKeywordTermCheck(r)
	case stBadRun:
		return l.feedBadRun(r)
	case stString:
		return l.feedString(r, replaced)
	case stStringEscape:
		return l.feedStringEscape(r)
	case stStringUnicode:
		return l.feedStringUnicode(r)
	case stStringUnicodeExpectBackslash:
		return l.feedUnicodeExpectBackslash(r)
	case stStringUnicodeExpectU:
		return l.feedUnicodeExpectU(r)
	case stCommentStart:
		return l.feedCommentStart(r)
	case stLineComment:
		return l.feedLineComment(r)
	case stBlockComment:
		return l.feedBlockComment(r)
	case stBlockCommentStar:
		return l.feedBlockCommentStar(r)
	default:
		panic("lexer: unreachable state")
	}
}

func (l *Lexer) feedBoundary(r rune) StepResult {
	if isWhitespace(r) {
		return StepResult{Event: EvNone}
	}
	if k, ok := isPunct(r); ok {
		return StepResult{Event: EvToken, Token: Token{Kind: k}}
	}
	if r == '"' {
		l.state = stString
		l.strBuf = l.strBuf[:0]
		l.strAttrs = 0
		return StepResult{Event: EvNone}
	}
	if r == '/' {
		if !l.cfg.AllowComments {
			return StepResult{Event: EvError, Err: ErrUnknownToken}
		}
		l.state = stCommentStart
		return StepResult{Event: EvNone}
	}
	if r == '-' || r == '0' || (r >= '1' && r <= '9') {
		l.startNumber(r)
		return StepResult{Event: EvNone}
	}
	if r == 'n' {
		return l.startKeyword("null", Null, r)
	}
	if r == 't' {
		return l.startKeyword("true", True, r)
	}
	if r == 'f' {
		return l.startKeyword("false", False, r)
	}
	if r == 'N' && l.cfg.AllowSpecialNumbers {
		return l.startKeyword("NaN", NaN, r)
	}
	if r == 'I' && l.cfg.AllowSpecialNumbers {
		return l.startKeyword("Infinity", Infinity, r)
	}
	// Nothing recognizes this codepoint as a token start: accumulate a
	// run until a terminator and report UnknownToken over the whole run.
	l.state = stBadRun
	l.badText = appendRune(l.badText[:0], r)
	return StepResult{Event: EvNone}
}

// appendRune appends r's UTF-8 encoding to dst; used only for diagnostic
// text (bad-token runs), never for string-literal payloads.
func appendRune(dst []byte, r rune) []byte {
	return append(dst, []byte(string(r))...)
}

func (l *Lexer) startKeyword(literal string, kind Kind, first rune) StepResult {
	l.state = stKeyword
	l.kwLiteral = literal
	l.kwKind = kind
	l.kwPos = 1 // first rune already matched literal[0]
	if len(literal) == 1 {
		l.state = stKeywordTermCheck
	}
	return StepResult{Event: EvNone}
}

func (l *Lexer) feedKeyword(r rune) StepResult {
	expected := rune(l.kwLiteral[l.kwPos])
	if r == expected {
		l.kwPos++
		if l.kwPos == len(l.kwLiteral) {
			l.state = stKeywordTermCheck
		}
		return StepResult{Event: EvNone}
	}
	l.state = stBadRun
	l.badText = appendRune(append([]byte(nil), l.kwLiteral[:l.kwPos]...), r)
	return StepResult{Event: EvNone}
}

func (l *Lexer) feedKeywordTermCheck(r rune) StepResult {
	if isTerminator(r) {
		return l.completeKeyword(true)
	}
	l.state = stBadRun
	l.badText = appendRune([]byte(l.kwLiteral), r)
	return StepResult{Event: EvNone}
}

func (l *Lexer) completeKeyword(reconsume bool) StepResult {
	tok := Token{Kind: l.kwKind, Text: []byte(l.kwLiteral)}
	l.reset()
	return StepResult{Event: EvToken, Token: tok, Reconsume: reconsume}
}

func (l *Lexer) feedBadRun(r rune) StepResult {
	if isTerminator(r) {
		return StepResult{Event: EvError, Err: ErrUnknownToken}
	}
	l.badText = appendRune(l.badText, r)
	return StepResult{Event: EvNone}
}

func (l *Lexer) feedCommentStart(r rune) StepResult {
	switch r {
	case '/':
		l.state = stLineComment
		return StepResult{Event: EvNone}
	case '*':
		l.state = stBlockComment
		return StepResult{Event: EvNone}
	default:
		return StepResult{Event: EvError, Err: ErrUnknownToken}
	}
}

func (l *Lexer) feedLineComment(r rune) StepResult {
	if r == 0x0A {
		l.reset()
	}
	return StepResult{Event: EvNone}
}

func (l *Lexer) feedBlockComment(r rune) StepResult {
	if r == '*' {
		l.state = stBlockCommentStar
	}
	return StepResult{Event: EvNone}
}

func (l *Lexer) feedBlockCommentStar(r rune) StepResult {
	switch r {
	case '/':
		l.reset()
	case '*':
		// stay in stBlockCommentStar
	default:
		l.state = stBlockComment
	}
	return StepResult{Event: EvNone}
}

// Final is called once when input is finished (the parser's final push),
// to resolve whatever token the lexer was mid-way through.
func (l *Lexer) Final() StepResult {
	switch l.state {
	case stBoundary:
		return StepResult{Event: EvNone}
	case stNumber:
		if l.numComplete() {
			return l.completeNumber(false)
		}
		return StepResult{Event: EvError, Err: ErrIncompleteToken}
	case stKeyword:
		return StepResult{Event: EvError, Err: ErrIncompleteToken}
	case stKeywordTermCheck:
		return l.completeKeyword(false)
	case stBadRun:
		return StepResult{Event: EvError, Err: ErrUnknownToken}
	case stString, stStringEscape, stStringUnicode, stStringUnicodeExpectBackslash, stStringUnicodeExpectU:
		return StepResult{Event: EvError, Err: ErrIncompleteToken}
	case stCommentStart, stBlockComment, stBlockCommentStar:
		return StepResult{Event: EvError, Err: ErrIncompleteToken}
	case stLineComment:
		l.reset()
		return StepResult{Event: EvNone}
	default:
		panic("lexer: unreachable state in Final")
	}
}
