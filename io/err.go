package io

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrNoInput = errors.New(f("no input attached"))
)
