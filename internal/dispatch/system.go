package dispatch

import (
	"os"

	"github.com/tarnstead/zigpin/internal/project"
)

// System abstracts the OS operations dispatch needs. Keeping it package-local
// lets tests drive the full pipeline without shared global state; other
// packages define their own narrower seams.
type System interface {
	Getenv(key string) string
	Environ() []string
	LocateDeclaration(startDir string) (string, bool, error)
	ReadDeclaration(path string) (string, error)
	ExecBinary(path string, args []string, env []string, exit func(int)) error
}

// RealSystem implements System using the OS and the project locator.
type RealSystem struct{}

// Getenv returns the value of the environment variable named by key.
func (RealSystem) Getenv(key string) string {
	return os.Getenv(key)
}

// Environ returns a copy of strings representing the environment.
func (RealSystem) Environ() []string {
	return os.Environ()
}

// LocateDeclaration searches upwards from startDir for a declaration file.
func (RealSystem) LocateDeclaration(startDir string) (string, bool, error) {
	return project.Locate(startDir)
}

// ReadDeclaration returns the raw declaration content at path.
func (RealSystem) ReadDeclaration(path string) (string, error) {
	return project.Read(path)
}

// ExecBinary hands the process over to the target binary.
func (RealSystem) ExecBinary(path string, args []string, env []string, exit func(int)) error {
	return execBinary(path, args, env, exit)
}
