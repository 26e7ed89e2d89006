package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcvoid/jsonsax/alloc"
	"github.com/mcvoid/jsonsax/internal/frame"
)

func TestPushPopDepth(t *testing.T) {
	var s frame.Stack
	require.NoError(t, s.Push(frame.Object))
	require.NoError(t, s.Push(frame.Array))
	assert.Equal(t, 2, s.Depth())

	top := s.Pop()
	assert.Equal(t, frame.Array, top.Kind)
	assert.Equal(t, 1, s.Depth())

	top = s.Pop()
	assert.Equal(t, frame.Object, top.Kind)
	assert.Equal(t, 0, s.Depth())
}

func TestDuplicateMemberTracking(t *testing.T) {
	var s frame.Stack
	require.NoError(t, s.Push(frame.Object))
	top := s.Top()

	assert.False(t, top.SeenMember([]byte("x")))
	top.RecordMember([]byte("x"))
	assert.True(t, top.SeenMember([]byte("x")))
	assert.False(t, top.SeenMember([]byte("y")))
}

func TestPushGrowthFailsViaAllocator(t *testing.T) {
	var s frame.Stack
	s.Allocator = &alloc.Fault{FailAt: 1}
	err := s.Push(frame.Object)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Equal(t, 0, s.Depth())
}

func TestPushGrowthSucceedsAfterFirstProbe(t *testing.T) {
	var s frame.Stack
	s.Allocator = &alloc.Fault{FailAt: 2}
	require.NoError(t, s.Push(frame.Object)) // probes capacity 8, succeeds
	for i := 0; i < 7; i++ {
		require.NoError(t, s.Push(frame.Array))
	}
	assert.Equal(t, 8, s.Depth())
	// The 9th push needs a new probe, which is the 2nd allocator call and
	// is configured to fail.
	err := s.Push(frame.Object)
	assert.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Equal(t, 8, s.Depth())
}
