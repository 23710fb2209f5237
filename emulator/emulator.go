// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	stdio "io"

	"go.uber.org/zap"

	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/io"
	"github.com/ezrec/synacor/state"
)

const (
	IN_LENGTH = 2 // Words in an in instruction.
)

// quickSave is a saved timeline.
type quickSave struct {
	cpu   *cpu.Cpu
	input *cpu.Event
}

// Emulator state. CPU + I/O channel + host bookkeeping.
type Emulator struct {
	Verbose  bool        // If set, enables verbose logging.
	Logger   *zap.Logger // Logging destination.
	*cpu.Cpu             // Reference to the CPU simulation.

	Channel io.Channel // Channel serving in and out. Defaults to Tape.
	Tape    io.Tape    // Console tape, recording recent output lines.
	History io.History // Program counter history.

	Breakpoints []*Breakpoint // Breakpoints checked before each instruction.

	input *cpu.Event // Input event waiting for a byte.
	quick *quickSave // Quick save slot.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(),
	}

	emu.Channel = &emu.Tape
	emu.SetLogger(nil)

	return
}

// SetLogger sets the logger of the emulator and its CPU. A nil logger
// disables logging.
func (emu *Emulator) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	emu.Logger = logger
	emu.Cpu.Logger = logger
}

// Reset the emulator, clearing memory and all host bookkeeping.
func (emu *Emulator) Reset() {
	emu.Cpu.Reset()
	emu.Channel.Rewind()
	emu.History.Reset()
	emu.input = nil
	emu.rearmBreakpoints()
}

// LoadProgram resets the emulator and loads a program image of
// little-endian words.
func (emu *Emulator) LoadProgram(r stdio.Reader) (err error) {
	data, err := stdio.ReadAll(r)
	if err != nil {
		return
	}

	words := cpu.BytesToWords(data)

	emu.Reset()
	err = emu.Cpu.Load(words)
	if err != nil {
		return
	}

	if emu.Verbose {
		emu.Logger.Info("program loaded", zap.Int("words", len(words)))
	}

	return
}

// AwaitingInput returns true if the machine is waiting for an input byte.
func (emu *Emulator) AwaitingInput() bool {
	return emu.input != nil
}

// Tick performs a single tick of the emulator: one instruction, and the
// servicing of its I/O.
//
// done is set when the machine halts, or when it is waiting for input that
// the channel cannot supply yet. In the latter case a later Tick retries
// the read.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil && !errors.As(err, new(*ErrBreakpoint)) {
			err = &ErrRuntime{Pc: pc, Err: err}
		}
	}()

	if emu.input != nil {
		return emu.serviceInput()
	}

	if emu.Cpu.State() == cpu.STATE_HALTED {
		done = true
		return
	}

	var stop *Breakpoint
	for _, bp := range emu.Breakpoints {
		var hit bool
		hit, err = bp.Hit(emu.Cpu)
		if err != nil {
			return
		}
		if hit && stop == nil {
			stop = bp
		}
	}
	if stop != nil {
		err = &ErrBreakpoint{Pc: pc, Breakpoint: stop}
		return
	}

	emu.History.Push(pc)

	status, err := emu.Cpu.Step()
	if err != nil {
		return
	}

	event, ok := emu.Cpu.PullEvent()
	if ok {
		switch event.Kind {
		case cpu.EVENT_OUTPUT:
			err = emu.Channel.WriteByte(event.Value)
			if err != nil {
				return
			}
		case cpu.EVENT_INPUT:
			emu.input = &event
			return emu.serviceInput()
		}
	}

	if status == cpu.STATUS_HALTED {
		if emu.Verbose {
			emu.Logger.Info("halted", zap.Uint16("pc", pc), zap.Int("ticks", emu.Cpu.Ticks))
		}
		done = true
	}

	return
}

// serviceInput supplies the pending input event with a byte from the
// channel.
func (emu *Emulator) serviceInput() (done bool, err error) {
	pending := emu.input

	value, err := emu.Channel.ReadByte()
	if errors.Is(err, stdio.EOF) {
		done = true
		err = nil
		return
	}
	if err != nil {
		return
	}

	// The machine was replaced while reading.
	if emu.input != pending {
		return
	}

	dest := emu.input.Register
	emu.input = nil

	err = emu.Cpu.WriteInput(dest, value)
	return
}

// Run ticks the emulator until it is done, or an error occurs.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// AddBreakpoint adds a breakpoint on a condition expression.
func (emu *Emulator) AddBreakpoint(expr string) (bp *Breakpoint, err error) {
	bp, err = NewBreakpoint(expr)
	if err != nil {
		return
	}

	emu.Breakpoints = append(emu.Breakpoints, bp)

	return
}

// ClearBreakpoints removes all breakpoints.
func (emu *Emulator) ClearBreakpoints() {
	emu.Breakpoints = nil
}

// rearmBreakpoints lets every breakpoint fire on the replaced machine state.
func (emu *Emulator) rearmBreakpoints() {
	for _, bp := range emu.Breakpoints {
		bp.Rearm()
	}
}

// QuickSave keeps a copy of the current machine state.
func (emu *Emulator) QuickSave() {
	emu.quick = &quickSave{
		cpu: emu.Cpu.Snapshot(),
	}

	if emu.input != nil {
		input := *emu.input
		emu.quick.input = &input
	}
}

// QuickLoad returns to the state kept by QuickSave. The quick save may be
// loaded again later.
func (emu *Emulator) QuickLoad() (err error) {
	if emu.quick == nil {
		err = ErrNoQuickSave
		return
	}

	emu.Cpu = emu.quick.cpu.Snapshot()
	emu.input = nil
	if emu.quick.input != nil {
		input := *emu.quick.input
		emu.input = &input
	}
	emu.rearmBreakpoints()

	return
}

// SaveState writes the machine state and recent output to a file.
//
// A machine waiting for input is saved with its program counter on the in
// instruction, so that the restored machine asks for the input again.
func (emu *Emulator) SaveState(path string) (err error) {
	saved := emu.Cpu
	if emu.input != nil {
		saved = emu.Cpu.Snapshot()
		saved.Pc = (saved.Pc - IN_LENGTH) & cpu.WORD_MASK
	}

	err = state.Save(path, saved, emu.Tape.Lines.String())
	if err != nil {
		return
	}

	if emu.Verbose {
		emu.Logger.Info("state saved", zap.String("path", path), zap.Uint16("pc", saved.Pc))
	}

	return
}

// LoadState replaces the machine state from a file, and returns the text
// stored with it. The text also becomes the recent output record.
//
// If the text is not valid, the machine state is still restored.
func (emu *Emulator) LoadState(path string) (text string, err error) {
	text, err = state.Load(path, emu.Cpu)
	if err != nil && !errors.Is(err, state.ErrInvalidText) {
		return
	}

	emu.History.Reset()
	emu.input = nil
	emu.rearmBreakpoints()
	emu.Tape.Lines.Restore(text)

	if emu.Verbose {
		emu.Logger.Info("state loaded", zap.String("path", path), zap.Uint16("pc", emu.Cpu.Pc))
	}

	return
}
