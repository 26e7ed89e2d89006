// Package lexer classifies a stream of decoded Unicode codepoints into the
// JSON tokens of spec.md §4.2: punctuation, keywords (including the
// optional NaN/Infinity/-Infinity and hex-number extensions), numbers, and
// strings (with escape handling, surrogate pairing, and embedded
// control-character policy).
//
// The lexer never sees raw bytes: the parser's encoding.Decoder has already
// turned the input into codepoints, keeping the encoding concern out of
// this layer entirely (spec.md §2 item 4).
package lexer

// Kind classifies a recognized token.
type Kind int

const (
	LBrace Kind = iota
	RBrace
	LBracket
	RBracket
	Colon
	Comma
	Null
	True
	False
	NaN
	Infinity
	NegInfinity
	Number
	// String covers both plain string values and object member names; the
	// lexer is grammar-agnostic, so which one a given String token means
	// is for the grammar machine (the parser) to decide from its own
	// substate, exactly as spec.md §4.2 separates lexing from grammar.
	String
)

// NumberAttrs is the number-attribute bit set of spec.md §3/§6.
type NumberAttrs uint8

const (
	NumNegative NumberAttrs = 1 << iota
	NumHex
	NumDecimalPoint
	NumExponent
	NumNegativeExponent
)

// StringAttrs is the string-attribute bit set of spec.md §3/§6.
type StringAttrs uint8

const (
	StrContainsNUL StringAttrs = 1 << iota
	StrContainsControl
	StrContainsNonASCII
	StrContainsNonBMP
	StrContainsReplaced
)

// Token is one recognized lexical unit. Text holds the number's verbatim
// ASCII source (spec.md §1's "parser surfaces number text verbatim") or the
// string's already-escaped, already-transcoded output-encoding payload.
// NumAttrs/StrAttrs are populated only for Number and String tokens (values
// and member names alike) respectively.
type Token struct {
	Kind     Kind
	Text     []byte
	NumAttrs NumberAttrs
	StrAttrs StringAttrs
}
