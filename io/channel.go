// Package io provides the host side byte I/O for the synacor emulator:
// a Tape connecting the machine's in and out instructions to streams, the
// record of recent output Lines, and a bounded program counter History.
package io

// Channel is a byte I/O device serving the machine's in and out
// instructions.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// ReadByte supplies the next input byte.
	ReadByte() (value byte, err error)
	// WriteByte accepts an output byte.
	WriteByte(value byte) error
}
