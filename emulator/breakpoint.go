package emulator

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/synacor/cpu"
)

// Breakpoint stops the emulator before an instruction when its condition
// becomes true.
//
// The condition is a Starlark expression over the machine state:
//
//	pc          program counter
//	sp          stack pointer (number of entries)
//	r0 .. r7    registers
//	mem[addr]   memory
//	ticks       instructions executed
//
// For example "pc == 0x156b and r7 != 0".
//
// A breakpoint fires when its condition goes from false to true. It fires
// again only after the condition has been false.
type Breakpoint struct {
	Expr string

	expr   syntax.Expr
	active bool // Condition was true at the last evaluation.
}

// NewBreakpoint creates a breakpoint, parsing the condition.
func NewBreakpoint(expr string) (bp *Breakpoint, err error) {
	opts := syntax.FileOptions{}
	parsed, err := opts.ParseExpr("breakpoint", expr, 0)
	if err != nil {
		err = &ErrBreakpointExpr{Expr: expr, Err: err}
		return
	}

	bp = &Breakpoint{Expr: expr, expr: parsed}
	return
}

// Hit evaluates the condition against the machine, and returns true if it
// has become true since the previous evaluation.
func (bp *Breakpoint) Hit(c *cpu.Cpu) (hit bool, err error) {
	thread := starlark.Thread{Name: "breakpoint"}
	opts := syntax.FileOptions{}

	env := starlark.StringDict{
		"pc":    starlark.MakeInt(int(c.Pc)),
		"sp":    starlark.MakeInt(c.Stack.Pointer),
		"ticks": starlark.MakeInt(c.Ticks),
		"mem":   memoryValue{memory: &c.Memory},
	}
	for n, val := range c.Register {
		env[fmt.Sprintf("r%d", n)] = starlark.MakeInt(int(val))
	}

	val, err := starlark.EvalExprOptions(&opts, &thread, bp.expr, env)
	if err != nil {
		err = &ErrBreakpointExpr{Expr: bp.Expr, Err: err}
		return
	}

	active := bool(val.Truth())
	hit = active && !bp.active
	bp.active = active

	return
}

// Rearm forgets the previous evaluation, so a condition that is already
// true fires at the next evaluation.
func (bp *Breakpoint) Rearm() {
	bp.active = false
}

// memoryValue exposes machine memory to Starlark as a read-only sequence.
type memoryValue struct {
	memory *[cpu.MEMORY_SIZE]uint16
}

var _ starlark.Indexable = memoryValue{}

func (mv memoryValue) String() string        { return "<memory>" }
func (mv memoryValue) Type() string          { return "memory" }
func (mv memoryValue) Freeze()               {}
func (mv memoryValue) Truth() starlark.Bool  { return starlark.True }
func (mv memoryValue) Len() int              { return len(mv.memory) }
func (mv memoryValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: memory") }

func (mv memoryValue) Index(i int) starlark.Value {
	return starlark.MakeInt(int(mv.memory[i]))
}
