package jsonsax

import (
	"github.com/mcvoid/jsonsax/alloc"
	"github.com/mcvoid/jsonsax/encoding"
)

// Settings configures a Parser (spec.md §6). All flags default off, all
// limits default unbounded, output_encoding defaults to UTF-8.
type Settings struct {
	InputEncoding  encoding.Kind
	OutputEncoding encoding.Kind

	MaxOutputStringLength int
	MaxNumberLength       int

	AllowBOM                        bool
	AllowComments                   bool
	AllowTrailingCommas             bool
	AllowSpecialNumbers             bool
	AllowHexNumbers                 bool
	ReplaceInvalidEncodingSequences bool
	TrackObjectMembers              bool

	// Allocator backs the nesting stack's growth. String and number
	// buffers do not go through it. Nil means alloc.Std.
	Allocator alloc.Allocator
}

// WriterSettings configures a Writer (spec.md §6).
type WriterSettings struct {
	OutputEncoding encoding.Kind

	UseCRLF                         bool
	ReplaceInvalidEncodingSequences bool

	Allocator alloc.Allocator
}
