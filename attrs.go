package jsonsax

import "github.com/mcvoid/jsonsax/internal/lexer"

// StringAttrs is the bit set describing a decoded string or object member
// name (spec.md §3/§6). It mirrors internal/lexer.StringAttrs under its own
// exported names, since a Go package cannot re-export an internal type to
// outside importers.
type StringAttrs uint8

const (
	StringContainsNUL StringAttrs = 1 << iota
	StringContainsControl
	StringContainsNonASCII
	StringContainsNonBMP
	StringContainsReplaced
)

func stringAttrsFromLexer(a lexer.StringAttrs) StringAttrs {
	var out StringAttrs
	if a&lexer.StrContainsNUL != 0 {
		out |= StringContainsNUL
	}
	if a&lexer.StrContainsControl != 0 {
		out |= StringContainsControl
	}
	if a&lexer.StrContainsNonASCII != 0 {
		out |= StringContainsNonASCII
	}
	if a&lexer.StrContainsNonBMP != 0 {
		out |= StringContainsNonBMP
	}
	if a&lexer.StrContainsReplaced != 0 {
		out |= StringContainsReplaced
	}
	return out
}

// NumberAttrs is the bit set describing a decoded number literal's surface
// form (spec.md §3/§6). It mirrors internal/lexer.NumberAttrs.
type NumberAttrs uint8

const (
	NumberIsNegative NumberAttrs = 1 << iota
	NumberIsHex
	NumberContainsDecimalPoint
	NumberContainsExponent
	NumberContainsNegativeExponent
)

func numberAttrsFromLexer(a lexer.NumberAttrs) NumberAttrs {
	var out NumberAttrs
	if a&lexer.NumNegative != 0 {
		out |= NumberIsNegative
	}
	if a&lexer.NumHex != 0 {
		out |= NumberIsHex
	}
	if a&lexer.NumDecimalPoint != 0 {
		out |= NumberContainsDecimalPoint
	}
	if a&lexer.NumExponent != 0 {
		out |= NumberContainsExponent
	}
	if a&lexer.NumNegativeExponent != 0 {
		out |= NumberContainsNegativeExponent
	}
	return out
}
