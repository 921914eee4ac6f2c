// Package logger provides the application's small, colorized console
// logger. There is no structured-logging library anywhere in the stack
// this repo is built from, so this stays a thin wrapper over stdout with
// ANSI color codes, gated by whether stdout is actually a terminal.
package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

const (
	colorReset  = "\033[0m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + colorReset
}

// Info logs a neutral status line tagged with a short subsystem name.
func Info(tag, msg string) {
	fmt.Printf("%s %s\n", colorize(colorBlue, "["+tag+"]"), msg)
}

// Success logs a positive-outcome status line.
func Success(tag, msg string) {
	fmt.Printf("%s %s\n", colorize(colorGreen, "["+tag+"]"), msg)
}

// Warn logs a recoverable-problem status line.
func Warn(tag, msg string) {
	fmt.Printf("%s %s\n", colorize(colorYellow, "["+tag+"]"), msg)
}

// Error logs a failure status line.
func Error(tag, msg string) {
	fmt.Printf("%s %s\n", colorize(colorRed, "["+tag+"]"), msg)
}

// Banner prints a one-line startup banner carrying the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(colorize(colorBold, "turnipmarket "+version))
}

// Section prints a labeled divider, used to separate groups of output
// (e.g. one per predicted pattern) in table-mode CLI output.
func Section(title string) {
	fmt.Printf("\n%s\n", colorize(colorBold, "== "+title+" =="))
}

// Stats prints a single key/value line, right-padded for alignment with
// sibling Stats calls.
func Stats(key string, value any) {
	fmt.Printf("%s %v\n", colorize(colorDim, fmt.Sprintf("%-28s", key+":")), value)
}
