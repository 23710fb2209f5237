// Package cpu implements the execution engine and instruction decoder for the
// synacor 16-bit register/stack machine.
//
// The machine has 32768 words of memory, eight registers addressed by the
// operand words 0x8000-0x8007, a fixed 4096 entry stack, and a 15-bit
// program counter. Every operand word is either a literal (below 0x8000), a
// register reference, or invalid.
//
// The Cpu never performs I/O itself. Step returns after at most one
// instruction, leaving at most one pending Event for the host to collect
// with PullEvent. Input is supplied back with WriteInput.
package cpu
