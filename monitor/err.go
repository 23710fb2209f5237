package monitor

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	ErrNoCommand    = errors.New(f("no command to repeat"))
	ErrNoFilename   = errors.New(f("no filename provided"))
	ErrNoExpression = errors.New(f("no breakpoint expression provided"))
	ErrNotStopped   = errors.New(f("not stopped at a breakpoint"))
	ErrNotSaved     = errors.New(f("state has not been saved, use '!exit nosave' to leave anyway"))
)

// ErrUnknownCommand indicates a command the monitor does not know.
type ErrUnknownCommand string

func (err ErrUnknownCommand) Error() string {
	return f("unknown command '%v'", string(err))
}

func (err ErrUnknownCommand) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownCommand)
	return
}

// ErrInvalidCount indicates a command count that is not a number.
type ErrInvalidCount string

func (err ErrInvalidCount) Error() string {
	return f("invalid count '%v'", string(err))
}

func (err ErrInvalidCount) Is(target error) (ok bool) {
	_, ok = target.(ErrInvalidCount)
	return
}
