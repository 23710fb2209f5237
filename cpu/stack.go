package cpu

const (
	STACK_LIMIT = 0x1000 // Maximum stack depth
)

// Stack is the machine's bounded word stack.
//
// Data is the complete backing buffer. Slots at and above Pointer are not
// part of the stack but keep whatever was last stored in them, so that a
// saved state reproduces the buffer exactly.
type Stack struct {
	Pointer int
	Data    [STACK_LIMIT]uint16
}

// Push a value. Returns false if the stack is full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Pointer] = value
	s.Pointer++

	return true
}

// Pop a value. Returns false if the stack is empty.
func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Pointer--
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Pointer == 0
}

func (s *Stack) Full() bool {
	return s.Pointer >= STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Pointer-1], true
}

// Len is the number of valid entries.
func (s *Stack) Len() int {
	return s.Pointer
}

// Contents returns the valid entries, bottom first.
func (s *Stack) Contents() []uint16 {
	return s.Data[:s.Pointer]
}

// Reset empties the stack and clears the backing buffer.
func (s *Stack) Reset() {
	s.Pointer = 0
	clear(s.Data[:])
}
