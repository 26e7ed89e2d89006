package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enc "github.com/mcvoid/jsonsax/encoding"
)

func TestEncoderRoundTripsThroughDecoder(t *testing.T) {
	kinds := []enc.Kind{enc.UTF8, enc.UTF16LE, enc.UTF16BE, enc.UTF32LE, enc.UTF32BE}
	input := []rune("Hello, 世界! \U0001F600")

	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			e := enc.NewEncoder(k)
			var buf []byte
			for _, r := range input {
				var err error
				buf, err = e.Append(buf, r)
				require.NoError(t, err)
			}

			d := enc.New(k)
			var got []rune
			for _, b := range buf {
				res := d.Feed(b)
				if res.Status == enc.Codepoint {
					got = append(got, res.Rune)
				}
				require.NotEqual(t, enc.Invalid, res.Status)
			}
			assert.Equal(t, input, got)
		})
	}
}

func TestEncoderRejectsSurrogates(t *testing.T) {
	e := enc.NewEncoder(enc.UTF8)
	_, err := e.Append(nil, 0xD800)
	assert.ErrorIs(t, err, enc.ErrInvalidCodepoint)
}

func TestEncoderRejectsOutOfRange(t *testing.T) {
	e := enc.NewEncoder(enc.UTF8)
	_, err := e.Append(nil, 0x110000)
	assert.ErrorIs(t, err, enc.ErrInvalidCodepoint)
}

func TestEncoderBOM(t *testing.T) {
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, enc.NewEncoder(enc.UTF8).BOM())
	assert.Equal(t, []byte{0xFF, 0xFE}, enc.NewEncoder(enc.UTF16LE).BOM())
}
