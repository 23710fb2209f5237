// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package monitor is the interactive command layer between a console and
// the emulator.
//
// The monitor is the input stream of the emulator tape. Console lines are
// passed to the program as input bytes, terminated by a newline, except
// lines starting with '!', which are monitor commands:
//
//	!save <file>      save the machine state
//	!load <file>      load a machine state
//	!debug            show the program counter, registers and stack
//	!history [n]      show the last n program counters
//	!break <expr>     add a breakpoint
//	!clear            remove all breakpoints
//	!quicksave        keep a copy of the machine state in memory
//	!quickload        return to the quick save
//	!continue         resume after a breakpoint
//	!exit [nosave]    leave, refused if the state has not been saved
//	!!                repeat the last command
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/emulator"
	"github.com/ezrec/synacor/state"
)

const (
	HISTORY_DEFAULT = 10 // Default entries shown by !history.
)

// Styles of the monitor messages.
type Styles struct {
	Info  lipgloss.Style
	Debug lipgloss.Style
	Error lipgloss.Style
	Text  lipgloss.Style
}

// NewStyles creates the monitor styles for a renderer.
func NewStyles(renderer *lipgloss.Renderer) Styles {
	return Styles{
		Info:  renderer.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		Debug: renderer.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		Error: renderer.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Text:  renderer.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	}
}

// Monitor reads console lines for an emulator.
type Monitor struct {
	Emulator *emulator.Emulator
	Styles   Styles

	console *bufio.Scanner
	output  io.Writer

	queue    []byte
	last     string
	saved    bool
	exited   bool
	closed   bool
	stopped  bool
	reloaded bool
}

var _ io.Reader = (*Monitor)(nil)

// NewMonitor creates a monitor for emu, reading console lines from console
// and writing its messages to output. The monitor is installed as the tape
// input of the emulator.
func NewMonitor(emu *emulator.Emulator, console io.Reader, output io.Writer) (mon *Monitor) {
	mon = &Monitor{
		Emulator: emu,
		Styles:   NewStyles(lipgloss.NewRenderer(output)),
		console:  bufio.NewScanner(console),
		output:   output,
	}

	emu.Tape.Input = mon

	return
}

// Exited returns true once an !exit command has been accepted.
func (mon *Monitor) Exited() bool {
	return mon.exited
}

// Closed returns true once the console has no more lines.
func (mon *Monitor) Closed() bool {
	return mon.closed
}

// Done returns true if the emulator should not be run any further.
func (mon *Monitor) Done() bool {
	return mon.exited || mon.closed
}

// Saved returns true if the machine state has been saved or loaded since
// the last input.
func (mon *Monitor) Saved() bool {
	return mon.saved
}

// Read supplies queued input bytes, reading console lines as needed.
//
// Read returns io.EOF when the console is closed, when the user exits, and
// after the machine state has been replaced by a command. In the last case
// the emulator can be run again.
func (mon *Monitor) Read(p []byte) (n int, err error) {
	for len(mon.queue) == 0 {
		if mon.Done() {
			err = io.EOF
			return
		}

		var line string
		line, err = mon.readLine()
		if err != nil {
			return
		}

		if !strings.HasPrefix(line, "!") {
			mon.queue = append(mon.queue, line...)
			mon.queue = append(mon.queue, '\n')
			mon.saved = false
			break
		}

		mon.command(line)

		if mon.reloaded {
			mon.reloaded = false
			err = io.EOF
			return
		}
	}

	n = copy(p, mon.queue)
	mon.queue = mon.queue[n:]

	return
}

// Interact runs monitor commands after the emulator stopped at a
// breakpoint, until the user continues or exits. A line that is not a
// command is queued as input and continues the run.
func (mon *Monitor) Interact(brk *emulator.ErrBreakpoint) {
	mon.info(f("breakpoint '%v' at pc %04X", brk.Breakpoint.Expr, brk.Pc))
	mon.debug()

	mon.stopped = true
	defer func() {
		mon.stopped = false
		mon.reloaded = false
	}()

	for mon.stopped && !mon.Done() {
		line, err := mon.readLine()
		if err != nil {
			return
		}

		if !strings.HasPrefix(line, "!") {
			mon.queue = append(mon.queue, line...)
			mon.queue = append(mon.queue, '\n')
			mon.saved = false
			return
		}

		mon.command(line)
	}
}

// Run the emulator until it halts, the user exits, or the console closes.
// Breakpoints hand control to Interact.
func (mon *Monitor) Run() (err error) {
	emu := mon.Emulator

	for {
		var done bool
		done, err = emu.Tick()

		var brk *emulator.ErrBreakpoint
		if errors.As(err, &brk) {
			err = nil
			mon.Interact(brk)
			if mon.Done() {
				return
			}
			continue
		}
		if err != nil {
			return
		}

		if !done {
			continue
		}

		if mon.Done() || emu.Cpu.State() != cpu.STATE_RUNNING {
			return
		}
	}
}

// readLine returns the next trimmed console line.
func (mon *Monitor) readLine() (line string, err error) {
	if !mon.console.Scan() {
		mon.closed = true
		err = mon.console.Err()
		if err == nil {
			err = io.EOF
		}
		return
	}

	line = strings.TrimSpace(mon.console.Text())
	return
}

// command runs a single monitor command line.
func (mon *Monitor) command(line string) {
	if line == "!!" {
		if len(mon.last) == 0 {
			mon.fail(ErrNoCommand)
			return
		}
		mon.text(f("repeating %v", mon.last))
		line = mon.last
	}

	mon.last = line

	words := strings.Fields(line)
	arg := func(n int) (value string, ok bool) {
		if n < len(words) {
			return words[n], true
		}
		return
	}

	emu := mon.Emulator

	switch strings.TrimPrefix(words[0], "!") {
	case "save":
		path, ok := arg(1)
		if !ok {
			mon.fail(ErrNoFilename)
			return
		}
		err := emu.SaveState(path)
		if err != nil {
			mon.fail(err)
			return
		}
		mon.saved = true
		mon.info(f("state saved to %v", path))
	case "load":
		path, ok := arg(1)
		if !ok {
			mon.fail(ErrNoFilename)
			return
		}
		text, err := emu.LoadState(path)
		if err != nil {
			mon.fail(err)
			if !errors.Is(err, state.ErrInvalidText) {
				return
			}
		}
		mon.saved = true
		mon.reloaded = true
		mon.stopped = false
		mon.info(f("state loaded from %v", path))
		for _, line := range strings.Split(text, "\n") {
			mon.text(line)
		}
	case "debug":
		mon.debug()
	case "history":
		limit := HISTORY_DEFAULT
		if value, ok := arg(1); ok {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				mon.fail(ErrInvalidCount(value))
				return
			}
			limit = n
		}
		mon.debugLine(f("pc history:"))
		mon.debugLine(hexJoin(emu.History.Last(limit), ", "))
	case "break":
		expr := strings.TrimSpace(strings.TrimPrefix(line, words[0]))
		if len(expr) == 0 {
			mon.fail(ErrNoExpression)
			return
		}
		_, err := emu.AddBreakpoint(expr)
		if err != nil {
			mon.fail(err)
			return
		}
		mon.info(f("breakpoint '%v' added", expr))
	case "clear":
		emu.ClearBreakpoints()
		mon.info(f("breakpoints cleared"))
	case "quicksave":
		emu.QuickSave()
		mon.info(f("quick saved"))
	case "quickload":
		err := emu.QuickLoad()
		if err != nil {
			mon.fail(err)
			return
		}
		mon.reloaded = true
		mon.stopped = false
		mon.info(f("quick loaded"))
	case "continue":
		if !mon.stopped {
			mon.fail(ErrNotStopped)
			return
		}
		mon.stopped = false
	case "exit":
		value, _ := arg(1)
		if value != "nosave" && !mon.saved {
			mon.fail(ErrNotSaved)
			return
		}
		mon.exited = true
	default:
		mon.fail(ErrUnknownCommand(words[0]))
	}
}

// debug shows the machine registers and stack.
func (mon *Monitor) debug() {
	emu := mon.Emulator

	pc, ok := emu.History.Peek()
	if !ok {
		pc = emu.Cpu.Pc
	}

	mon.debugLine(f("pc: %04X", pc))
	mon.debugLine(f("registers: %v", hexJoin(emu.Cpu.Register[:], ", ")))
	mon.debugLine(f("stack: %v <--", hexJoin(emu.Cpu.Stack.Contents(), " - ")))
}

func (mon *Monitor) info(msg string) {
	fmt.Fprintln(mon.output, mon.Styles.Info.Render(msg))
}

func (mon *Monitor) text(msg string) {
	fmt.Fprintln(mon.output, mon.Styles.Text.Render(msg))
}

func (mon *Monitor) debugLine(msg string) {
	fmt.Fprintln(mon.output, mon.Styles.Debug.Render(msg))
}

func (mon *Monitor) fail(err error) {
	fmt.Fprintln(mon.output, mon.Styles.Error.Render(err.Error()))
}

// hexJoin formats words as 4 digit hexadecimal.
func hexJoin(words []uint16, sep string) string {
	parts := make([]string, len(words))
	for n, word := range words {
		parts[n] = fmt.Sprintf("%04X", word)
	}

	return strings.Join(parts, sep)
}
