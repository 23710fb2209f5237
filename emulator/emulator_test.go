package emulator

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/state"
)

const (
	r0 = cpu.REGISTER_BASE + iota
	r1
	r2
)

// program returns the binary image of a list of words.
func program(words ...uint16) *bytes.Reader {
	return bytes.NewReader(cpu.WordsToBytes(words))
}

func newTestEmulator(t *testing.T, input string, words ...uint16) (emu *Emulator, output *bytes.Buffer) {
	emu = NewEmulator()
	err := emu.LoadProgram(program(words...))
	if err != nil {
		t.Fatal(err)
	}

	output = &bytes.Buffer{}
	emu.Tape.Input = strings.NewReader(input)
	emu.Tape.Output = output

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Logger)
	assert.Equal(&emu.Tape, emu.Channel)
}

func TestEmulatorOutput(t *testing.T) {
	assert := assert.New(t)

	emu, output := newTestEmulator(t, "",
		uint16(cpu.OP_OUT), 'h',
		uint16(cpu.OP_OUT), 'i',
		uint16(cpu.OP_OUT), '\n',
		uint16(cpu.OP_OUT), '>',
		uint16(cpu.OP_HALT))

	assert.NoError(emu.Run())
	assert.Equal("hi\n>", output.String())
	assert.Equal([]string{"hi"}, emu.Tape.Lines.Lines())
	assert.Equal("hi\n>", emu.Tape.Lines.String())
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State())
	assert.Equal(5, emu.History.Len())
	assert.Equal([]uint16{4, 6, 8}, emu.History.Last(3))

	// Halted emulators stay done.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorEcho(t *testing.T) {
	assert := assert.New(t)

	emu, output := newTestEmulator(t, "ab",
		uint16(cpu.OP_IN), r0,
		uint16(cpu.OP_OUT), r0,
		uint16(cpu.OP_IN), r1,
		uint16(cpu.OP_OUT), r1,
		uint16(cpu.OP_HALT))

	assert.NoError(emu.Run())
	assert.Equal("ab", output.String())
	assert.Equal(uint16('a'), emu.Cpu.Register[0])
	assert.Equal(uint16('b'), emu.Cpu.Register[1])
}

func TestEmulatorInputExhausted(t *testing.T) {
	assert := assert.New(t)

	emu, output := newTestEmulator(t, "",
		uint16(cpu.OP_IN), r2,
		uint16(cpu.OP_OUT), r2,
		uint16(cpu.OP_HALT))

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.True(emu.AwaitingInput())
	assert.Equal(uint16(2), emu.Cpu.Pc)

	// Retrying without input leaves the machine waiting.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.True(emu.AwaitingInput())

	emu.Tape.Input = strings.NewReader("z")
	assert.NoError(emu.Run())
	assert.False(emu.AwaitingInput())
	assert.Equal("z", output.String())
}

func TestEmulatorInputInvalidDestination(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, "q", uint16(cpu.OP_IN), 0x1234)

	err := emu.Run()
	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(uint16(0), runtime.Pc)
	assert.Equal(cpu.ErrIllegalParameterWrite(0x1234), runtime.Err)
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, "",
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_POP), r0)

	err := emu.Run()
	assert.ErrorIs(err, cpu.ErrStackUnderflow)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(uint16(1), runtime.Pc)
	assert.Contains(err.Error(), "pc 0001")

	// The fault is terminal.
	_, err = emu.Tick()
	assert.ErrorIs(err, cpu.ErrStackUnderflow)
}

func TestEmulatorLoadProgram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Cpu.Register[3] = 9

	assert.NoError(emu.LoadProgram(bytes.NewReader([]byte{0x15, 0x00, 0x13})))
	assert.Equal([]uint16{21, 19, 0}, emu.Cpu.Memory[:3])
	assert.Equal(uint16(0), emu.Cpu.Register[3])

	err := emu.LoadProgram(bytes.NewReader(make([]byte, 2*cpu.MEMORY_SIZE+2)))
	assert.ErrorIs(err, cpu.ErrProgramSize)
}

func TestEmulatorBreakpoint(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, "",
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_HALT))

	bp, err := emu.AddBreakpoint("pc == 2")
	assert.NoError(err)

	err = emu.Run()
	var brk *ErrBreakpoint
	assert.True(errors.As(err, &brk))
	assert.Equal(uint16(2), brk.Pc)
	assert.Equal(bp, brk.Breakpoint)
	assert.Equal(uint16(2), emu.Cpu.Pc)
	assert.Contains(err.Error(), "pc == 2")

	// Continuing steps past the breakpoint.
	assert.NoError(emu.Run())
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State())
}

func TestEmulatorBreakpointState(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, "",
		uint16(cpu.OP_SET), r1, 7,
		uint16(cpu.OP_PUSH), r1,
		uint16(cpu.OP_WMEM), 100, 42,
		uint16(cpu.OP_HALT))

	_, err := emu.AddBreakpoint("mem[100] == 42 and r1 == 7 and sp == 1 and ticks == 3")
	assert.NoError(err)

	err = emu.Run()
	var brk *ErrBreakpoint
	assert.True(errors.As(err, &brk))
	assert.Equal(uint16(8), brk.Pc)

	emu.ClearBreakpoints()
	assert.NoError(emu.Run())
}

func TestEmulatorBreakpointHeld(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, "",
		uint16(cpu.OP_SET), r1, 7,
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_SET), r1, 0,
		uint16(cpu.OP_SET), r1, 7,
		uint16(cpu.OP_HALT))

	_, err := emu.AddBreakpoint("r1 == 7")
	assert.NoError(err)

	// Fires when the condition becomes true, not while it stays true.
	var pcs []uint16
	for {
		err = emu.Run()
		var brk *ErrBreakpoint
		if !errors.As(err, &brk) {
			break
		}
		pcs = append(pcs, brk.Pc)
	}
	assert.NoError(err)
	assert.Equal([]uint16{3, 11}, pcs)
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State())
}

func TestEmulatorBreakpointRearm(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, "",
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_NOOP),
		uint16(cpu.OP_HALT))

	emu.QuickSave()

	_, err := emu.AddBreakpoint("ticks == 0")
	assert.NoError(err)

	var brk *ErrBreakpoint
	assert.ErrorAs(emu.Run(), &brk)
	assert.NoError(emu.Run())

	// The restored machine fires again.
	assert.NoError(emu.QuickLoad())
	assert.ErrorAs(emu.Run(), &brk)
	assert.Equal(uint16(0), brk.Pc)
}

func TestEmulatorBreakpointInvalid(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	_, err := emu.AddBreakpoint("pc ==")
	var expr *ErrBreakpointExpr
	assert.True(errors.As(err, &expr))
	assert.Empty(emu.Breakpoints)

	// Evaluation errors stop the emulator.
	_, err = emu.AddBreakpoint("nothing == 1")
	assert.NoError(err)
	_, err = emu.Tick()
	assert.True(errors.As(err, &expr))
}

func TestEmulatorQuickSave(t *testing.T) {
	assert := assert.New(t)

	emu, output := newTestEmulator(t, "xy",
		uint16(cpu.OP_IN), r0,
		uint16(cpu.OP_OUT), r0,
		uint16(cpu.OP_HALT))

	assert.ErrorIs(emu.QuickLoad(), ErrNoQuickSave)

	emu.Tape.Input = strings.NewReader("")
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.True(emu.AwaitingInput())

	emu.QuickSave()

	emu.Tape.Input = strings.NewReader("x")
	assert.NoError(emu.Run())
	assert.Equal("x", output.String())

	// Back to the saved timeline, still waiting for input.
	assert.NoError(emu.QuickLoad())
	assert.True(emu.AwaitingInput())
	assert.Equal(cpu.STATE_RUNNING, emu.Cpu.State())

	emu.Tape.Input = strings.NewReader("y")
	assert.NoError(emu.Run())
	assert.Equal("xy", output.String())
	assert.Equal(uint16('y'), emu.Cpu.Register[0])
}

func TestEmulatorSaveLoadState(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "game.state")

	emu, _ := newTestEmulator(t, "",
		uint16(cpu.OP_OUT), '?',
		uint16(cpu.OP_IN), r0,
		uint16(cpu.OP_OUT), r0,
		uint16(cpu.OP_HALT))

	assert.NoError(emu.Run())
	assert.True(emu.AwaitingInput())
	assert.Equal(uint16(4), emu.Cpu.Pc)

	assert.NoError(emu.SaveState(path))

	// The running machine is not rewound.
	assert.Equal(uint16(4), emu.Cpu.Pc)

	other := NewEmulator()
	output := &bytes.Buffer{}
	other.Tape.Output = output
	other.Tape.Input = strings.NewReader("k")

	text, err := other.LoadState(path)
	assert.NoError(err)
	assert.Equal("?", text)
	assert.Equal("?", other.Tape.Lines.Current())
	assert.Equal(uint16(2), other.Cpu.Pc)
	assert.Equal(emu.Cpu.Memory, other.Cpu.Memory)

	assert.NoError(other.Run())
	assert.Equal("k", output.String())
	assert.Equal(uint16('k'), other.Cpu.Register[0])
}

func TestEmulatorLoadStateMissing(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	_, err := emu.LoadState(filepath.Join(t.TempDir(), "missing.state"))
	assert.ErrorIs(err, state.ErrIO)
}

func TestEmulatorSaveStateLatin1(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "latin1.state")

	emu, output := newTestEmulator(t, "",
		uint16(cpu.OP_OUT), 0xe9,
		uint16(cpu.OP_OUT), '\n',
		uint16(cpu.OP_OUT), 0x80,
		uint16(cpu.OP_HALT))

	assert.NoError(emu.Run())
	assert.Equal([]byte{0xe9, '\n', 0x80}, output.Bytes())
	assert.NoError(emu.SaveState(path))

	other := NewEmulator()
	text, err := other.LoadState(path)
	assert.NoError(err)
	assert.Equal("é\n\u0080", text)
}
