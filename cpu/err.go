package cpu

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	// Stack errors
	ErrStackOverflow  = errors.New(f("stack overflow"))
	ErrStackUnderflow = errors.New(f("stack underflow"))

	// Arithmetic errors
	ErrDivideByZero = errors.New(f("divide by zero"))

	// Host protocol errors
	ErrHalted = errors.New(f("cpu halted"))
)

// ErrIllegalOpcode is raised when the fetched word is not an opcode.
type ErrIllegalOpcode uint16

func (err ErrIllegalOpcode) Error() string {
	return f("illegal opcode - %d", uint16(err))
}

func (err ErrIllegalOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrIllegalOpcode)
	return
}

// ErrIllegalParameterRead is raised when a value operand is neither a
// literal nor a register reference. It carries the raw operand word.
type ErrIllegalParameterRead uint16

func (err ErrIllegalParameterRead) Error() string {
	return f("illegal parameter read - %d", uint16(err))
}

func (err ErrIllegalParameterRead) Is(target error) (ok bool) {
	_, ok = target.(ErrIllegalParameterRead)
	return
}

// ErrIllegalParameterWrite is raised when a destination operand is not a
// register reference. It carries the rejected destination word, not the
// value that would have been written.
type ErrIllegalParameterWrite uint16

func (err ErrIllegalParameterWrite) Error() string {
	return f("illegal parameter write - %d", uint16(err))
}

func (err ErrIllegalParameterWrite) Is(target error) (ok bool) {
	_, ok = target.(ErrIllegalParameterWrite)
	return
}
