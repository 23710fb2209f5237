package cpu

import (
	"encoding/binary"
)

const (
	MEMORY_SIZE    = 0x8000 // Words of memory.
	REGISTER_COUNT = 8      // Number of registers.
	REGISTER_BASE  = 0x8000 // Operand word addressing register 0.
	WORD_MASK      = 0x7fff // Mask of the 15-bit arithmetic and address space.
)

// WordClass is the addressing mode of a raw operand word.
type WordClass int

const (
	WORD_LITERAL  = WordClass(0) // Value used as-is.
	WORD_REGISTER = WordClass(1) // Register reference.
	WORD_INVALID  = WordClass(2) // Neither.
)

// Classify returns the addressing mode of a raw operand word.
func Classify(word uint16) WordClass {
	switch {
	case word < REGISTER_BASE:
		return WORD_LITERAL
	case word < REGISTER_BASE+REGISTER_COUNT:
		return WORD_REGISTER
	default:
		return WORD_INVALID
	}
}

// BytesToWords converts a little-endian byte stream to words.
// An odd trailing byte becomes the low byte of a final word.
func BytesToWords(data []byte) (words []uint16) {
	words = make([]uint16, (len(data)+1)/2)
	for n := range words {
		if 2*n+1 < len(data) {
			words[n] = binary.LittleEndian.Uint16(data[2*n:])
		} else {
			words[n] = uint16(data[2*n])
		}
	}

	return
}

// WordsToBytes converts words to a little-endian byte stream.
func WordsToBytes(words []uint16) (data []byte) {
	data = make([]byte, 0, 2*len(words))
	for _, word := range words {
		data = binary.LittleEndian.AppendUint16(data, word)
	}

	return
}
