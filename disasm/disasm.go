// Package disasm produces text listings of synacor machine code.
//
// Disassembly never executes and never fails on content: words that are not
// opcodes are listed as !XXXX and the scan resumes at the following word.
package disasm

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/synacor/cpu"
)

// Instruction renders the instruction at position in memory, and returns
// the number of words it occupies. Operands past the end of memory are
// omitted.
func Instruction(position int, memory []uint16) (text string, length int) {
	mnemonic, operands, length := cpu.Decode(position, memory)
	if operands == 0 {
		return mnemonic, length
	}

	op := cpu.Opcode(memory[position])

	var params []string
	for n := position + 1; n < position+length && n < len(memory); n++ {
		params = append(params, Operand(op, memory[n]))
	}

	text = fmt.Sprintf("%-6s%v", mnemonic, strings.Join(params, ", "))

	return
}

// Operand renders a single operand word of op.
func Operand(op cpu.Opcode, word uint16) string {
	if op == cpu.OP_OUT {
		switch word {
		case 0:
			return "'[NUL]'"
		case '\n':
			return `'\n'`
		default:
			return fmt.Sprintf("'%c'", rune(byte(word)))
		}
	}

	switch cpu.Classify(word) {
	case cpu.WORD_LITERAL:
		return fmt.Sprintf("#%04X", word)
	case cpu.WORD_REGISTER:
		return fmt.Sprintf("(%d)", word-cpu.REGISTER_BASE)
	default:
		return fmt.Sprintf("!%04X", word)
	}
}

// Lines iterates over the listing of memory, yielding the address and text
// of each instruction.
func Lines(memory []uint16) iter.Seq2[int, string] {
	return func(yield func(address int, text string) bool) {
		for pc := 0; pc < len(memory); {
			text, length := Instruction(pc, memory)
			if !yield(pc, text) {
				return
			}
			pc += length
		}
	}
}

// Disassemble writes the listing of memory to w, one instruction per line.
func Disassemble(w io.Writer, memory []uint16) (err error) {
	for pc, text := range Lines(memory) {
		_, err = fmt.Fprintf(w, "%04X    %v\n", pc, text)
		if err != nil {
			return
		}
	}

	return
}
