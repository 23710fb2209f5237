package monitor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/emulator"
)

const r0 = cpu.REGISTER_BASE

// echo copies input to output forever.
var echo = []uint16{
	uint16(cpu.OP_IN), r0,
	uint16(cpu.OP_OUT), r0,
	uint16(cpu.OP_JMP), 0,
}

func newTestMonitor(t *testing.T, console ...string) (mon *Monitor, tape *bytes.Buffer, msgs *bytes.Buffer) {
	emu := emulator.NewEmulator()
	err := emu.LoadProgram(bytes.NewReader(cpu.WordsToBytes(echo)))
	if err != nil {
		t.Fatal(err)
	}

	tape = &bytes.Buffer{}
	msgs = &bytes.Buffer{}
	emu.Tape.Output = tape

	text := strings.Join(console, "\n")
	if len(console) > 0 {
		text += "\n"
	}
	mon = NewMonitor(emu, strings.NewReader(text), msgs)

	return
}

func TestMonitorInput(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t, "hello", "  look around  ")
	assert.Equal(mon, mon.Emulator.Tape.Input)

	assert.NoError(mon.Run())
	assert.Equal("hello\nlook around\n", tape.String())
	assert.Empty(msgs.String())
	assert.True(mon.Closed())
	assert.False(mon.Exited())
	assert.True(mon.Done())
	assert.True(mon.Emulator.AwaitingInput())
}

func TestMonitorDebug(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t, "!debug")
	mon.Emulator.Cpu.Register[3] = 0x1234
	mon.Emulator.Cpu.Stack.Push(0xbeef)
	mon.Emulator.Cpu.Stack.Push(0x0007)

	assert.NoError(mon.Run())
	assert.Empty(tape.String())
	assert.Contains(msgs.String(), "pc: 0000")
	assert.Contains(msgs.String(), "registers: 0000, 0000, 0000, 1234, 0000, 0000, 0000, 0000")
	assert.Contains(msgs.String(), "stack: BEEF - 0007 <--")
}

func TestMonitorHistory(t *testing.T) {
	assert := assert.New(t)

	mon, _, msgs := newTestMonitor(t, "a", "!history 3", "!history x")

	assert.NoError(mon.Run())
	assert.Contains(msgs.String(), "pc history:")
	assert.Contains(msgs.String(), "0002, 0004, 0000")
	assert.Contains(msgs.String(), ErrInvalidCount("x").Error())
}

func TestMonitorRepeat(t *testing.T) {
	assert := assert.New(t)

	mon, _, msgs := newTestMonitor(t, "!!", "!clear", "!!")

	assert.NoError(mon.Run())
	assert.Contains(msgs.String(), ErrNoCommand.Error())
	assert.Contains(msgs.String(), "repeating !clear")
	assert.Equal(2, strings.Count(msgs.String(), "breakpoints cleared"))
}

func TestMonitorUnknown(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t, "!frob", "!continue", "!save", "!break")

	assert.NoError(mon.Run())
	assert.Empty(tape.String())
	assert.Contains(msgs.String(), ErrUnknownCommand("!frob").Error())
	assert.Contains(msgs.String(), ErrNotStopped.Error())
	assert.Contains(msgs.String(), ErrNoFilename.Error())
	assert.Contains(msgs.String(), ErrNoExpression.Error())
}

func TestMonitorExit(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t, "!exit", "!exit nosave", "never")

	assert.NoError(mon.Run())
	assert.True(mon.Exited())
	assert.False(mon.Closed())
	assert.Empty(tape.String())
	assert.Contains(msgs.String(), ErrNotSaved.Error())
}

func TestMonitorSaveExit(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "echo.state")

	mon, tape, msgs := newTestMonitor(t, "hi", "!save "+path, "!exit")

	assert.NoError(mon.Run())
	assert.True(mon.Exited())
	assert.True(mon.Saved())
	assert.Equal("hi\n", tape.String())
	assert.Contains(msgs.String(), "state saved to "+path)

	_, err := os.Stat(path)
	assert.NoError(err)

	// The saved machine asks for input again.
	emu := emulator.NewEmulator()
	text, err := emu.LoadState(path)
	assert.NoError(err)
	assert.Equal("hi\n", text)
	assert.Equal(uint16(0), emu.Cpu.Pc)
	assert.Equal(uint16('\n'), emu.Cpu.Register[0])
}

func TestMonitorLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "echo.state")

	saved := emulator.NewEmulator()
	assert.NoError(saved.LoadProgram(bytes.NewReader(cpu.WordsToBytes(echo))))
	saved.Cpu.Register[1] = 77
	saved.Tape.Lines.Restore("old output")
	assert.NoError(saved.SaveState(path))

	mon, tape, msgs := newTestMonitor(t, "!load "+path, "z", "!load "+path+".missing")

	assert.NoError(mon.Run())
	assert.Equal("z\n", tape.String())
	assert.Equal(uint16(77), mon.Emulator.Cpu.Register[1])
	assert.Contains(msgs.String(), "state loaded from "+path)
	assert.Contains(msgs.String(), "old output")
	assert.Contains(msgs.String(), "missing")
}

func TestMonitorQuickLoad(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t, "!quickload", "!quicksave", "x", "!quickload", "y")

	assert.NoError(mon.Run())
	assert.Equal("x\ny\n", tape.String())
	assert.Contains(msgs.String(), emulator.ErrNoQuickSave.Error())
	assert.Contains(msgs.String(), "quick saved")
	assert.Contains(msgs.String(), "quick loaded")
}

func TestMonitorBreakpoint(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t,
		"!break pc == 2",
		"a",
		"!continue",
		"!clear",
		"!continue",
	)

	assert.NoError(mon.Run())
	assert.Equal("a\n", tape.String())
	assert.Equal(2, strings.Count(msgs.String(), "breakpoint 'pc == 2' at pc 0002"))
	assert.Contains(msgs.String(), "breakpoint 'pc == 2' added")
	assert.Empty(mon.Emulator.Breakpoints)
}

func TestMonitorBreakpointInput(t *testing.T) {
	assert := assert.New(t)

	mon, tape, msgs := newTestMonitor(t,
		"!break r0 == 0x62",
		"b",
		"c",
		"!exit nosave",
	)

	assert.NoError(mon.Run())
	assert.True(mon.Exited())
	assert.Equal("b\nc\n", tape.String())
	assert.Contains(msgs.String(), "breakpoint 'r0 == 0x62' at pc 0002")
}

func TestMonitorBreakpointInvalid(t *testing.T) {
	assert := assert.New(t)

	mon, _, msgs := newTestMonitor(t, "!break pc ==")

	assert.NoError(mon.Run())
	assert.Empty(mon.Emulator.Breakpoints)
	assert.Contains(msgs.String(), "breakpoint 'pc =='")
}
