package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcvoid/jsonsax/encoding"
)

// feedDetect drives DetectKind one byte at a time over data, as the parser
// does internally regardless of how the caller chunked Push, and returns
// the first non-errNeedMoreBytes outcome.
func feedDetect(t *testing.T, data []byte) encoding.Detection {
	t.Helper()
	var prefix []byte
	for i, b := range data {
		prefix = append(prefix, b)
		final := i == len(data)-1
		det, err := encoding.DetectKind(prefix, final)
		if err == nil {
			return det
		}
		if !encoding.NeedsMoreBytes(err) {
			t.Fatalf("unexpected error at byte %d: %v", i, err)
		}
	}
	t.Fatalf("detection never resolved over %d bytes", len(data))
	return encoding.Detection{}
}

func TestDetectUTF32BENoBOMByteAtATime(t *testing.T) {
	// Big-endian encoding of U+0031 ('1'), no BOM.
	det := feedDetect(t, []byte{0x00, 0x00, 0x00, 0x31})
	assert.Equal(t, encoding.UTF32BE, det.Kind)
	assert.False(t, det.HasBOM)
}

func TestDetectUTF32LENoBOMByteAtATime(t *testing.T) {
	// Little-endian encoding of U+0031 ('1'), no BOM.
	det := feedDetect(t, []byte{0x31, 0x00, 0x00, 0x00})
	assert.Equal(t, encoding.UTF32LE, det.Kind)
	assert.False(t, det.HasBOM)
}

func TestDetectUTF32BENoBOMWholePushAtOnce(t *testing.T) {
	// Same bytes, presented as a single non-incremental call with final
	// true right away: must resolve identically to the byte-at-a-time case.
	det, err := encoding.DetectKind([]byte{0x00, 0x00, 0x00, 0x31}, true)
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF32BE, det.Kind)
}

func TestDetectUTF32BOMStillWinsOverNoBOMHeuristic(t *testing.T) {
	det := feedDetect(t, []byte{0x00, 0x00, 0xFE, 0xFF, 0x00, 0x00, 0x00, 0x31})
	assert.Equal(t, encoding.UTF32BE, det.Kind)
	assert.True(t, det.HasBOM)
	assert.Equal(t, 4, det.BOMLen)
}

func TestDetectUTF32LEBOMStillWinsOverNoBOMHeuristic(t *testing.T) {
	det := feedDetect(t, []byte{0xFF, 0xFE, 0x00, 0x00, 0x31, 0x00, 0x00, 0x00})
	assert.Equal(t, encoding.UTF32LE, det.Kind)
	assert.True(t, det.HasBOM)
}

func TestDetectASCIIDoesNotHangWaitingForUTF32LEHeuristic(t *testing.T) {
	// "null" in plain ASCII: every byte after the first is non-zero, so the
	// "xx 00 00 00" ambiguity must resolve well before 4 bytes arrive.
	det := feedDetect(t, []byte("null"))
	assert.Equal(t, encoding.UTF8, det.Kind)
}

func TestDetectUTF16BENoBOM(t *testing.T) {
	// "1" as UTF-16BE, no BOM: 00 31.
	det := feedDetect(t, []byte{0x00, 0x31, 0x00, 0x00})
	assert.Equal(t, encoding.UTF16BE, det.Kind)
}

func TestDetectSingleByteFinalFallsBackToUTF8(t *testing.T) {
	det, err := encoding.DetectKind([]byte{0x35}, true)
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, det.Kind)
}
