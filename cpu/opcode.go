package cpu

import (
	"fmt"
)

// Opcode is an instruction operation code.
type Opcode uint16

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HALT = Opcode(0)  // halt
	OP_SET  = Opcode(1)  // set
	OP_PUSH = Opcode(2)  // push
	OP_POP  = Opcode(3)  // pop
	OP_EQ   = Opcode(4)  // eq
	OP_GT   = Opcode(5)  // gt
	OP_JMP  = Opcode(6)  // jmp
	OP_JT   = Opcode(7)  // jt
	OP_JF   = Opcode(8)  // jf
	OP_ADD  = Opcode(9)  // add
	OP_MULT = Opcode(10) // mult
	OP_MOD  = Opcode(11) // mod
	OP_AND  = Opcode(12) // and
	OP_OR   = Opcode(13) // or
	OP_NOT  = Opcode(14) // not
	OP_RMEM = Opcode(15) // rmem
	OP_WMEM = Opcode(16) // wmem
	OP_CALL = Opcode(17) // call
	OP_RET  = Opcode(18) // ret
	OP_OUT  = Opcode(19) // out
	OP_IN   = Opcode(20) // in
	OP_NOOP = Opcode(21) // noop

	OP_COUNT = 22 // Number of defined opcodes.
)

// opcodeOperands is the operand count of each opcode.
var opcodeOperands = [OP_COUNT]int{
	OP_HALT: 0,
	OP_SET:  2,
	OP_PUSH: 1,
	OP_POP:  1,
	OP_EQ:   3,
	OP_GT:   3,
	OP_JMP:  1,
	OP_JT:   2,
	OP_JF:   2,
	OP_ADD:  3,
	OP_MULT: 3,
	OP_MOD:  3,
	OP_AND:  3,
	OP_OR:   3,
	OP_NOT:  2,
	OP_RMEM: 2,
	OP_WMEM: 2,
	OP_CALL: 1,
	OP_RET:  0,
	OP_OUT:  1,
	OP_IN:   1,
	OP_NOOP: 0,
}

// Valid returns true for the defined opcodes.
func (op Opcode) Valid() bool {
	return op < OP_COUNT
}

// Operands returns the number of operand words that follow the opcode.
// Invalid opcodes have none.
func (op Opcode) Operands() int {
	if !op.Valid() {
		return 0
	}
	return opcodeOperands[op]
}

// Destination returns true if the first operand names a register to write.
func (op Opcode) Destination() bool {
	switch op {
	case OP_SET, OP_POP, OP_EQ, OP_GT, OP_ADD, OP_MULT, OP_MOD,
		OP_AND, OP_OR, OP_NOT, OP_RMEM:
		return true
	}
	return false
}

// Mnemonic returns the assembly name of an opcode word, or !XXXX for a
// word that is not an opcode.
func (op Opcode) Mnemonic() string {
	if !op.Valid() {
		return fmt.Sprintf("!%04X", uint16(op))
	}
	return op.String()
}

// Decode the instruction at position in memory.
//
// Words that are not opcodes decode as a single word instruction with no
// operands, so that a scan over malformed memory stays aligned. Positions
// outside of memory decode as !0000.
func Decode(position int, memory []uint16) (mnemonic string, operands int, length int) {
	if position < 0 || position >= len(memory) {
		return "!0000", 0, 1
	}

	op := Opcode(memory[position])
	operands = op.Operands()

	return op.Mnemonic(), operands, 1 + operands
}
