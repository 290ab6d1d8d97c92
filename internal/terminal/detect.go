// Package terminal provides terminal detection utilities.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether stderr is an interactive terminal. Progress
// output goes to stderr; stdout belongs to the delegated toolchain.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
