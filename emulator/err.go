package emulator

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	ErrNoQuickSave = errors.New(f("no quick save"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc  uint16
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc %04x %v", err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrBreakpoint indicates that a breakpoint stopped execution. The
// instruction at Pc has not been executed.
type ErrBreakpoint struct {
	Pc         uint16
	Breakpoint *Breakpoint
}

func (err *ErrBreakpoint) Error() string {
	return f("breakpoint '%v' at pc %04x", err.Breakpoint.Expr, err.Pc)
}

// ErrBreakpointExpr indicates a breakpoint condition that does not parse or
// evaluate.
type ErrBreakpointExpr struct {
	Expr string
	Err  error
}

func (err *ErrBreakpointExpr) Error() string {
	return f("breakpoint '%v' %v", err.Expr, err.Err)
}

func (err *ErrBreakpointExpr) Unwrap() error {
	return err.Err
}
