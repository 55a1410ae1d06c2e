package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitArgument = 2
)

// argumentError marks bad command line input; it exits with status 2 and shows the usage.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return e.err.Error() }

func (e *argumentError) Unwrap() error { return e.err }

func argumentErrorf(format string, args ...any) error {
	return &argumentError{err: fmt.Errorf(format, args...)}
}

func isArgumentError(err error) bool {
	var ae *argumentError
	return errors.As(err, &ae)
}

// printError writes err to w, in red when w is a terminal.
func printError(w io.Writer, prefix string, err error) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(w, "\x1b[31m%s%s\x1b[0m\n", prefix, err)
		return
	}
	fmt.Fprintf(w, "%s%s\n", prefix, err)
}
