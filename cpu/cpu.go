// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Status is the result of a successful Step.
type Status int

const (
	STATUS_CONTINUE = Status(0) // More instructions may be executed.
	STATUS_HALTED   = Status(1) // The halt instruction was executed.
)

// State is the lifecycle state of the Cpu.
type State int

const (
	STATE_RUNNING = State(0) // Accepting Step calls.
	STATE_HALTED  = State(1) // Terminal, reached by halt.
	STATE_FAULTED = State(2) // Terminal, see Fault().
)

// EventKind is the type of a pending I/O event.
type EventKind int

const (
	EVENT_NONE   = EventKind(0)
	EVENT_OUTPUT = EventKind(1) // Value holds the byte to output.
	EVENT_INPUT  = EventKind(2) // Register holds the raw destination word.
)

// Event is an I/O request from the Cpu to its host.
type Event struct {
	Kind     EventKind
	Value    byte
	Register uint16
}

var ErrProgramSize = errors.New(f("program larger than memory"))

// Cpu is the simulation context of the machine.
type Cpu struct {
	Verbose bool        // Set to enable per-instruction tracing.
	Logger  *zap.Logger // Trace destination. Nil disables tracing.

	Pc       uint16                 // Program counter.
	Register [REGISTER_COUNT]uint16 // Register bank.
	Memory   [MEMORY_SIZE]uint16    // Main memory.
	Stack    Stack                  // Stack simulation.

	Ticks int // Instructions executed.

	state State
	fault error
	event Event
}

// NewCpu creates a new zeroed Cpu.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	return
}

// Reset the Cpu to its power-on state: memory, registers and stack are
// zeroed, and any fault or pending event is dropped.
func (cpu *Cpu) Reset() {
	cpu.Pc = 0
	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Stack.Reset()
	cpu.Ticks = 0
	cpu.Resume()
}

// Resume marks the Cpu as running again, dropping any fault and pending
// event. Used after the machine state has been replaced wholesale.
func (cpu *Cpu) Resume() {
	cpu.state = STATE_RUNNING
	cpu.fault = nil
	cpu.event = Event{}
}

// Load a program into memory starting at address 0. Memory past the end of
// the program is not modified.
func (cpu *Cpu) Load(program []uint16) (err error) {
	if len(program) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	copy(cpu.Memory[:], program)

	return
}

// Snapshot returns an independent deep copy of the Cpu.
func (cpu *Cpu) Snapshot() *Cpu {
	clone := *cpu
	return &clone
}

// State returns the lifecycle state.
func (cpu *Cpu) State() State {
	return cpu.state
}

// Fault returns the error that terminated the Cpu, if any.
func (cpu *Cpu) Fault() error {
	return cpu.fault
}

// PullEvent returns the pending event, and clears it.
func (cpu *Cpu) PullEvent() (event Event, ok bool) {
	event, ok = cpu.PendingEvent()
	cpu.event = Event{}
	return
}

// PendingEvent returns the pending event without clearing it.
func (cpu *Cpu) PendingEvent() (event Event, ok bool) {
	event = cpu.event
	ok = event.Kind != EVENT_NONE
	return
}

// String returns the current Cpu state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %04X\n", cpu.Pc)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("   r%d: %04X\n", n, val)
	}
	top, ok := cpu.Stack.Peek()
	if ok {
		text += fmt.Sprintf("stack: %04X (%d)\n", top, cpu.Stack.Len())
	} else {
		text += "stack: ---- (0)\n"
	}

	return
}

// WriteInput completes an input event by writing value to the destination
// carried by the event. The destination is only validated here: an invalid
// destination faults the Cpu with ErrIllegalParameterWrite.
func (cpu *Cpu) WriteInput(dest uint16, value byte) (err error) {
	switch cpu.state {
	case STATE_HALTED:
		return ErrHalted
	case STATE_FAULTED:
		return cpu.fault
	}

	err = cpu.setRegister(dest, uint16(value))
	if err != nil {
		cpu.state = STATE_FAULTED
		cpu.fault = err
	}

	return
}

// Step executes a single instruction.
//
// Any error is a fault: the Cpu is left in STATE_FAULTED and later calls
// return the same error without executing. Once halted, Step keeps
// returning STATUS_HALTED.
func (cpu *Cpu) Step() (status Status, err error) {
	switch cpu.state {
	case STATE_HALTED:
		return STATUS_HALTED, nil
	case STATE_FAULTED:
		return STATUS_CONTINUE, cpu.fault
	}

	defer func() {
		if err != nil {
			cpu.state = STATE_FAULTED
			cpu.fault = err
		}
	}()

	if cpu.Verbose && cpu.Logger != nil {
		pc := int(cpu.Pc & WORD_MASK)
		mnemonic, _, length := Decode(pc, cpu.Memory[:])
		cpu.Logger.Debug("step",
			zap.Uint16("pc", cpu.Pc),
			zap.String("op", mnemonic),
			zap.Uint16s("args", cpu.Memory[pc+1:min(pc+length, MEMORY_SIZE)]),
		)
	}

	op := Opcode(cpu.fetch())
	cpu.Ticks++

	var dst uint16
	if op.Destination() {
		dst = cpu.fetch()
	}

	switch op {
	case OP_HALT:
		cpu.state = STATE_HALTED
		status = STATUS_HALTED
		return
	case OP_SET:
		var val uint16
		val, err = cpu.value()
		if err != nil {
			return
		}
		err = cpu.setRegister(dst, val)
	case OP_PUSH:
		var val uint16
		val, err = cpu.value()
		if err != nil {
			return
		}
		if !cpu.Stack.Push(val) {
			err = ErrStackOverflow
		}
	case OP_POP:
		val, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		err = cpu.setRegister(dst, val)
	case OP_EQ, OP_GT, OP_ADD, OP_MULT, OP_MOD, OP_AND, OP_OR:
		var a, b, val uint16
		a, err = cpu.value()
		if err != nil {
			return
		}
		b, err = cpu.value()
		if err != nil {
			return
		}
		val, err = doAlu(op, a, b)
		if err != nil {
			return
		}
		err = cpu.setRegister(dst, val)
	case OP_NOT:
		var val uint16
		val, err = cpu.value()
		if err != nil {
			return
		}
		err = cpu.setRegister(dst, ^val&WORD_MASK)
	case OP_JMP:
		var addr uint16
		addr, err = cpu.value()
		if err != nil {
			return
		}
		cpu.Pc = addr
	case OP_JT, OP_JF:
		var test, addr uint16
		test, err = cpu.value()
		if err != nil {
			return
		}
		addr, err = cpu.value()
		if err != nil {
			return
		}
		if (test != 0) == (op == OP_JT) {
			cpu.Pc = addr
		}
	case OP_RMEM:
		var addr uint16
		addr, err = cpu.value()
		if err != nil {
			return
		}
		err = cpu.setRegister(dst, cpu.Memory[addr&WORD_MASK])
	case OP_WMEM:
		var addr, val uint16
		addr, err = cpu.value()
		if err != nil {
			return
		}
		val, err = cpu.value()
		if err != nil {
			return
		}
		cpu.Memory[addr&WORD_MASK] = val
	case OP_CALL:
		var addr uint16
		addr, err = cpu.value()
		if err != nil {
			return
		}
		if !cpu.Stack.Push(cpu.Pc) {
			err = ErrStackOverflow
			return
		}
		cpu.Pc = addr
	case OP_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		cpu.Pc = addr
	case OP_OUT:
		var val uint16
		val, err = cpu.value()
		if err != nil {
			return
		}
		cpu.event = Event{Kind: EVENT_OUTPUT, Value: byte(val)}
	case OP_IN:
		// The destination is validated when the input is written back.
		cpu.event = Event{Kind: EVENT_INPUT, Register: cpu.fetch()}
	case OP_NOOP:
		// pass
	default:
		err = ErrIllegalOpcode(op)
		return
	}

	return
}

// fetch reads the word at the program counter, and advances it.
func (cpu *Cpu) fetch() (word uint16) {
	word = cpu.Memory[cpu.Pc&WORD_MASK]
	cpu.Pc = (cpu.Pc + 1) & WORD_MASK
	return
}

// value fetches a value operand, resolving register references.
func (cpu *Cpu) value() (value uint16, err error) {
	word := cpu.fetch()

	switch Classify(word) {
	case WORD_LITERAL:
		value = word
	case WORD_REGISTER:
		value = cpu.Register[word-REGISTER_BASE]
	default:
		err = ErrIllegalParameterRead(word)
	}

	return
}

// setRegister writes a register through a raw destination operand.
func (cpu *Cpu) setRegister(dst uint16, value uint16) (err error) {
	if Classify(dst) != WORD_REGISTER {
		err = ErrIllegalParameterWrite(dst)
		return
	}

	cpu.Register[dst-REGISTER_BASE] = value
	return
}

// doAlu performs a two operand operation, and returns the output value.
func doAlu(op Opcode, a uint16, b uint16) (output uint16, err error) {
	switch op {
	case OP_EQ:
		if a == b {
			output = 1
		}
	case OP_GT:
		if a > b {
			output = 1
		}
	case OP_ADD:
		output = uint16((uint32(a) + uint32(b)) & WORD_MASK)
	case OP_MULT:
		output = uint16((uint32(a) * uint32(b)) & WORD_MASK)
	case OP_MOD:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		output = a % b
	case OP_AND:
		output = a & b
	case OP_OR:
		output = a | b
	default:
		panic("unknown alu op")
	}

	return
}
