package io

import (
	"io"
)

// Tape provides byte I/O over an io.Reader for input and an io.Writer for
// output. Every output byte is also recorded in Lines.
type Tape struct {
	Input  io.Reader
	Output io.Writer
	Lines  Lines
}

var _ Channel = (*Tape)(nil)

// Rewind forgets the recorded output. The streams are not rewindable.
func (tc *Tape) Rewind() {
	tc.Lines.Reset()
}

// ReadByte reads a single byte from the input stream.
func (tc *Tape) ReadByte() (value byte, err error) {
	if tc.Input == nil {
		err = ErrNoInput
		return
	}

	var one [1]byte
	_, err = io.ReadFull(tc.Input, one[:])
	if err != nil {
		return
	}

	value = one[0]
	return
}

// WriteByte records the byte, and writes it to the output stream if there
// is one.
func (tc *Tape) WriteByte(value byte) (err error) {
	tc.Lines.WriteByte(value)

	if tc.Output == nil {
		return
	}

	_, err = tc.Output.Write([]byte{value})
	return
}
