package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcvoid/jsonsax/encoding"
	"github.com/mcvoid/jsonsax/internal/lexer"
)

func newLexer(cfg lexer.Settings) *lexer.Lexer {
	return lexer.New(cfg, encoding.NewEncoder(encoding.UTF8))
}

// feed drives l over s (ASCII-only inputs suffice for these tests) and
// returns the sequence of token/error results, honoring Reconsume. Like the
// parser, it stops at the first error.
func feed(t *testing.T, l *lexer.Lexer, s string) []lexer.StepResult {
	t.Helper()
	var out []lexer.StepResult
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		res := l.Feed(runes[i], false)
		if res.Event != lexer.EvNone {
			out = append(out, res)
		}
		if res.Event == lexer.EvError {
			return out
		}
		if res.Reconsume {
			continue
		}
		i++
	}
	if fin := l.Final(); fin.Event != lexer.EvNone {
		out = append(out, fin)
	}
	return out
}

func TestPunctuation(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "{}[]:,")
	require.Len(t, out, 6)
	kinds := []lexer.Kind{lexer.LBrace, lexer.RBrace, lexer.LBracket, lexer.RBracket, lexer.Colon, lexer.Comma}
	for i, k := range kinds {
		assert.Equal(t, lexer.EvToken, out[i].Event)
		assert.Equal(t, k, out[i].Token.Kind)
	}
}

func TestKeywords(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "null true false")
	require.Len(t, out, 3)
	assert.Equal(t, lexer.Null, out[0].Token.Kind)
	assert.Equal(t, lexer.True, out[1].Token.Kind)
	assert.Equal(t, lexer.False, out[2].Token.Kind)
}

func TestMalformedKeywordIsUnknownToken(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "nul ")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.EvError, out[0].Event)
	assert.Equal(t, lexer.ErrUnknownToken, out[0].Err)
}

func TestSpecialNumbersRequireOption(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "NaN")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.EvError, out[0].Event)

	l2 := newLexer(lexer.Settings{AllowSpecialNumbers: true})
	out2 := feed(t, l2, "NaN Infinity -Infinity")
	require.Len(t, out2, 3)
	assert.Equal(t, lexer.NaN, out2[0].Token.Kind)
	assert.Equal(t, lexer.Infinity, out2[1].Token.Kind)
	assert.Equal(t, lexer.NegInfinity, out2[2].Token.Kind)
}

func TestNumberVariants(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "0 -1 3.14 2e10 -4.5e-3")
	require.Len(t, out, 5)
	for _, r := range out {
		assert.Equal(t, lexer.EvToken, r.Event)
		assert.Equal(t, lexer.Number, r.Token.Kind)
	}
	assert.Equal(t, lexer.NumNegative, out[1].Token.NumAttrs&lexer.NumNegative)
	assert.Equal(t, lexer.NumDecimalPoint, out[2].Token.NumAttrs&lexer.NumDecimalPoint)
	assert.Equal(t, lexer.NumExponent, out[3].Token.NumAttrs&lexer.NumExponent)
	assert.NotZero(t, out[4].Token.NumAttrs&lexer.NumNegativeExponent)
}

func TestHexNumberRequiresOption(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "0x1F ")
	require.NotEmpty(t, out)
	assert.Equal(t, lexer.EvError, out[0].Event)

	l2 := newLexer(lexer.Settings{AllowHexNumbers: true})
	out2 := feed(t, l2, "0x1F ")
	require.Len(t, out2, 1)
	assert.Equal(t, lexer.Number, out2[0].Token.Kind)
	assert.NotZero(t, out2[0].Token.NumAttrs&lexer.NumHex)
}

func TestNegativeHexNumberIsInvalid(t *testing.T) {
	l := newLexer(lexer.Settings{AllowHexNumbers: true})
	out := feed(t, l, "-0x1 ")
	require.NotEmpty(t, out)
	assert.Equal(t, lexer.ErrInvalidNumber, out[0].Err)
}

func TestLeadingZeroFollowedByDigitIsInvalid(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "01")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrInvalidNumber, out[0].Err)
}

func TestBareMinusAtEOFIsIncomplete(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "-")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrIncompleteToken, out[0].Err)
}

func TestMissingExponentDigitAtEOFIsIncomplete(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "1e")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrIncompleteToken, out[0].Err)
}

func TestStringBasic(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, `"hello"`)
	require.Len(t, out, 1)
	assert.Equal(t, lexer.String, out[0].Token.Kind)
	assert.Equal(t, "hello", string(out[0].Token.Text))
}

func TestStringEscapes(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, `"a\n\tbA"`)
	require.Len(t, out, 1)
	assert.Equal(t, "a\n\tbA", string(out[0].Token.Text))
	assert.NotZero(t, out[0].Token.StrAttrs&lexer.StrContainsControl)
}

func TestStringSurrogatePair(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, `"\`+`uD83D\`+`uDE00"`)
	require.Len(t, out, 1)
	assert.Equal(t, "😀", string(out[0].Token.Text))
	assert.NotZero(t, out[0].Token.StrAttrs&lexer.StrContainsNonBMP)
}

func TestStringUnpairedHighSurrogate(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, `"\uD83Dx"`)
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrUnpairedSurrogateEscapeSequence, out[0].Err)
}

func TestStringUnescapedControlCharacter(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "\"a\tb\"")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrUnescapedControlCharacter, out[0].Err)
}

func TestUnterminatedStringIsIncomplete(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, `"abc`)
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrIncompleteToken, out[0].Err)
}

func TestCommentsRequireOption(t *testing.T) {
	l := newLexer(lexer.Settings{})
	out := feed(t, l, "// x\n")
	require.NotEmpty(t, out)
	assert.Equal(t, lexer.EvError, out[0].Event)

	l2 := newLexer(lexer.Settings{AllowComments: true})
	out2 := feed(t, l2, "// a comment\nnull")
	require.Len(t, out2, 1)
	assert.Equal(t, lexer.Null, out2[0].Token.Kind)

	l3 := newLexer(lexer.Settings{AllowComments: true})
	out3 := feed(t, l3, "/* block */null")
	require.Len(t, out3, 1)
	assert.Equal(t, lexer.Null, out3[0].Token.Kind)
}

func TestUnterminatedBlockCommentIsIncomplete(t *testing.T) {
	l := newLexer(lexer.Settings{AllowComments: true})
	out := feed(t, l, "/* oops")
	require.Len(t, out, 1)
	assert.Equal(t, lexer.ErrIncompleteToken, out[0].Err)
}

func TestTooLongNumber(t *testing.T) {
	l := newLexer(lexer.Settings{MaxNumberLen: 3})
	out := feed(t, l, "12345")
	require.NotEmpty(t, out)
	assert.Equal(t, lexer.ErrTooLongNumber, out[0].Err)
}

func TestTooLongString(t *testing.T) {
	l := newLexer(lexer.Settings{MaxStringLen: 3})
	out := feed(t, l, `"abcd"`)
	require.NotEmpty(t, out)
	assert.Equal(t, lexer.ErrTooLongString, out[0].Err)
}
