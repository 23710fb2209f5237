package state

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	ErrIO                  = errors.New(f("state i/o"))
	ErrInvalidText         = errors.New(f("state text is not valid utf-8"))
	ErrInvalidStackPointer = errors.New(f("state stack pointer out of range"))
)

// ErrInvalidDataLength is raised for a state buffer too short for its
// layout. It carries the buffer length in bytes.
type ErrInvalidDataLength int

func (err ErrInvalidDataLength) Error() string {
	return f("invalid data length - %d bytes", int(err))
}

func (err ErrInvalidDataLength) Is(target error) (ok bool) {
	_, ok = target.(ErrInvalidDataLength)
	return
}
