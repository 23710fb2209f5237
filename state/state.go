// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package state saves and restores the complete state of a synacor Cpu.
//
// The layout is a fixed sequence of little-endian 16-bit words:
//
//	word 0          program counter
//	word 1-8        registers r0-r7
//	word 9-32776    memory
//	word 32777      stack pointer
//	word 32778-     full stack buffer, including slots above the pointer
//
// An extended state appends a word with the length in bytes of a UTF-8
// text, followed by the text bytes.
package state

import (
	"encoding/binary"
	"errors"
	"os"
	"unicode/utf8"

	"github.com/ezrec/synacor/cpu"
)

// Word offsets of the state regions.
const (
	OFFSET_PC            = 0
	OFFSET_REGISTERS     = OFFSET_PC + 1
	OFFSET_MEMORY        = OFFSET_REGISTERS + cpu.REGISTER_COUNT
	OFFSET_STACK_POINTER = OFFSET_MEMORY + cpu.MEMORY_SIZE
	OFFSET_STACK         = OFFSET_STACK_POINTER + 1
	OFFSET_TEXT_LENGTH   = OFFSET_STACK + cpu.STACK_LIMIT
	OFFSET_TEXT          = OFFSET_TEXT_LENGTH + 1

	FIXED_SIZE    = OFFSET_TEXT_LENGTH * 2 // Size in bytes of the fixed region.
	TEXT_SIZE_MAX = 0xffff                 // Largest auxiliary text in bytes.
)

var ErrTextSize = errors.New(f("state text too long"))

// Encode the fixed region of the Cpu state.
func Encode(c *cpu.Cpu) (data []byte) {
	data = make([]byte, 0, FIXED_SIZE)

	data = binary.LittleEndian.AppendUint16(data, c.Pc)
	for _, val := range c.Register {
		data = binary.LittleEndian.AppendUint16(data, val)
	}
	for _, val := range c.Memory {
		data = binary.LittleEndian.AppendUint16(data, val)
	}
	data = binary.LittleEndian.AppendUint16(data, uint16(c.Stack.Pointer))
	for _, val := range c.Stack.Data {
		data = binary.LittleEndian.AppendUint16(data, val)
	}

	return
}

// EncodeText encodes the Cpu state followed by an auxiliary text.
func EncodeText(c *cpu.Cpu, text string) (data []byte, err error) {
	if len(text) > TEXT_SIZE_MAX {
		err = ErrTextSize
		return
	}

	data = Encode(c)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(text)))
	data = append(data, text...)

	return
}

// Decode replaces the state of c with the encoded state in data, and
// returns the auxiliary text if there is one.
//
// All length checks happen before c is modified. The text is checked after
// the numeric state has been restored: ErrInvalidText leaves c restored.
func Decode(c *cpu.Cpu, data []byte) (text string, err error) {
	if len(data) < FIXED_SIZE {
		err = ErrInvalidDataLength(len(data))
		return
	}

	word := func(offset int) uint16 {
		return binary.LittleEndian.Uint16(data[offset*2:])
	}

	var raw []byte
	if len(data) > FIXED_SIZE {
		if len(data) < OFFSET_TEXT*2 {
			err = ErrInvalidDataLength(len(data))
			return
		}
		size := int(word(OFFSET_TEXT_LENGTH))
		if len(data) < OFFSET_TEXT*2+size {
			err = ErrInvalidDataLength(len(data))
			return
		}
		raw = data[OFFSET_TEXT*2 : OFFSET_TEXT*2+size]
	}

	pointer := int(word(OFFSET_STACK_POINTER))
	if pointer > cpu.STACK_LIMIT {
		err = ErrInvalidStackPointer
		return
	}

	c.Pc = word(OFFSET_PC)
	for n := range c.Register {
		c.Register[n] = word(OFFSET_REGISTERS + n)
	}
	for n := range c.Memory {
		c.Memory[n] = word(OFFSET_MEMORY + n)
	}
	c.Stack.Pointer = pointer
	for n := range c.Stack.Data {
		c.Stack.Data[n] = word(OFFSET_STACK + n)
	}
	c.Resume()

	if !utf8.Valid(raw) {
		err = ErrInvalidText
		return
	}

	text = string(raw)

	return
}

// Save the Cpu state and text to a file.
func Save(path string, c *cpu.Cpu, text string) (err error) {
	data, err := EncodeText(c, text)
	if err != nil {
		return
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		err = errors.Join(ErrIO, err)
	}

	return
}

// Load the Cpu state from a file, returning its text.
func Load(path string, c *cpu.Cpu) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = errors.Join(ErrIO, err)
		return
	}

	return Decode(c, data)
}
