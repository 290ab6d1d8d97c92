//go:build windows

package dispatch

import (
	"errors"
	"os"
	"os/exec"
)

// execBinary spawns the target binary and waits, since Windows cannot replace
// the process image. The child's exit code is propagated through exit.
func execBinary(path string, args []string, env []string, exit func(int)) error {
	cmd := exec.Command(path, args[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exit(exitErr.ExitCode())
			return nil
		}
		return err
	}
	exit(0)
	return nil
}
