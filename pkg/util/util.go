// Package util holds the front-end diagnostics. Library packages return
// plain errors; only the command layer prints through here.
package util

import (
	"fmt"
	"os"
)

const (
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colReset  = "\033[0m"
)

// Quiet suppresses warnings and informational output when set by the -q
// front-end flag. Errors always print.
var Quiet bool

// Error prints a formatted error message and exits with status 1.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "asmopt: %serror:%s ", colRed, colReset)
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

// Warn prints a formatted warning message unless quiet mode is on.
func Warn(format string, args ...interface{}) {
	if Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "asmopt: %swarning:%s ", colYellow, colReset)
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
}

// Info prints progress output unless quiet mode is on.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
}
