// Package frame implements the nesting stack described in spec.md §4.3: a
// growable array of frames, each naming a currently-open container and its
// grammar sub-state, with optional per-frame member-name tracking for
// duplicate-key detection.
package frame

import "github.com/mcvoid/jsonsax/alloc"

// Kind is the container kind a Frame represents.
type Kind int

const (
	Object Kind = iota
	Array
)

// SubState encodes what token class is legal next within a Frame, per
// spec.md §4.2's substate cycles.
type SubState int

const (
	Empty SubState = iota
	ExpectMemberName
	ExpectColon
	ExpectValue
	ExpectCommaOrEnd
)

// Frame is one element of the nesting stack.
type Frame struct {
	Kind         Kind
	State        SubState
	FirstElement bool
	members      map[string]struct{} // lazily allocated; nil unless tracking
}

// SeenMember reports whether name has already been recorded on this frame.
func (f *Frame) SeenMember(name []byte) bool {
	if f.members == nil {
		return false
	}
	_, ok := f.members[string(name)]
	return ok
}

// RecordMember inserts name into this frame's seen-member set, allocating
// the set on first use.
func (f *Frame) RecordMember(name []byte) {
	if f.members == nil {
		f.members = make(map[string]struct{})
	}
	f.members[string(name)] = struct{}{}
}

// Stack is the growable frame vector. The zero value is an empty, usable
// stack backed by the standard allocator.
type Stack struct {
	// Allocator is consulted (via a probe Allocate call) every time the
	// backing array needs to grow, so allocator-failure-safety
	// (spec.md §8) can be exercised on the nesting stack, the one structure
	// that goes through the allocator. The frames themselves are still stored in an
	// ordinary Go slice grown by append: Frame holds a map, and the C
	// ancestor's raw realloc-over-bytes trick has no safe Go analogue for
	// a pointer-containing struct, so the allocator's returned buffer is
	// discarded after the probe succeeds.
	Allocator alloc.Allocator
	frames    []Frame
	probed    int // capacity already cleared with the allocator
}

func (s *Stack) alloc() alloc.Allocator {
	if s.Allocator != nil {
		return s.Allocator
	}
	return alloc.Std
}

// Depth reports the current nesting depth (0 at top level).
func (s *Stack) Depth() int { return len(s.frames) }

// Push grows the stack by one frame of the given kind.
func (s *Stack) Push(kind Kind) error {
	if len(s.frames) >= s.probed {
		newCap := s.probed * 2
		if newCap == 0 {
			newCap = 8
		}
		if _, err := s.alloc().Allocate(newCap * frameSize); err != nil {
			return err
		}
		s.probed = newCap
	}
	s.frames = append(s.frames, Frame{Kind: kind, State: Empty, FirstElement: true})
	return nil
}

// frameSize is a nominal per-frame byte cost used only to size the probe
// allocation requested from the allocator contract.
const frameSize = 32

// Pop removes and returns the top frame. The caller must check Depth()>0.
func (s *Stack) Pop() Frame {
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Top returns a pointer to the top frame for in-place mutation (advancing
// SubState, clearing FirstElement). The caller must check Depth()>0.
func (s *Stack) Top() *Frame {
	return &s.frames[len(s.frames)-1]
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.alloc().Release(nil)
	s.frames = nil
	s.probed = 0
}
