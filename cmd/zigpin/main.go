package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/tarnstead/zigpin/internal/dispatch"
	"github.com/tarnstead/zigpin/internal/messages"
)

var runFunc = dispatch.Run
var getwd = os.Getwd

func main() {
	runMain(os.Args, os.Stderr, os.Exit)
}

// runMain resolves the working directory and hands the invocation to the
// dispatch pipeline, exiting nonzero on fatal errors. stderr carries progress
// and errors; stdout belongs to the delegated toolchain.
func runMain(args []string, stderr io.Writer, exit func(int)) {
	cwd, err := getwd()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, messages.CLIErrorFmt, err)
		exit(1)
		return
	}
	if err := runFunc(args, cwd, stderr, exit); err != nil {
		if errors.Is(err, dispatch.ErrDelegated) {
			return
		}
		_, _ = color.New(color.FgRed).Fprintf(stderr, messages.CLIErrorFmt, err)
		exit(1)
	}
}
