package dispatch

import (
	"errors"
	"fmt"
)

// errNotMocked is returned when a testSystem method is called without a mock function set.
var errNotMocked = errors.New("testSystem: method not mocked")

// testSystem provides a mock System for unit tests.
//
// Fallback behavior:
//   - ExecBinary: returns errNotMocked (fail-fast). Handing the process over
//     must never happen accidentally in tests.
//   - Getenv, Environ, LocateDeclaration, ReadDeclaration: fall back to
//     RealSystem, so tests can build fixtures with t.TempDir() and t.Setenv()
//     without mocking every call.
type testSystem struct {
	// RealSystem is embedded for fallback behavior on methods that commonly
	// use real test fixtures. Override-able methods check their Func field
	// first and delegate to RealSystem if nil.
	RealSystem

	GetenvFunc            func(key string) string
	EnvironFunc           func() []string
	LocateDeclarationFunc func(startDir string) (string, bool, error)
	ReadDeclarationFunc   func(path string) (string, error)
	ExecBinaryFunc        func(path string, args []string, env []string, exit func(int)) error
}

func (s *testSystem) Getenv(key string) string {
	if s.GetenvFunc != nil {
		return s.GetenvFunc(key)
	}
	return s.RealSystem.Getenv(key)
}

func (s *testSystem) Environ() []string {
	if s.EnvironFunc != nil {
		return s.EnvironFunc()
	}
	return s.RealSystem.Environ()
}

func (s *testSystem) LocateDeclaration(startDir string) (string, bool, error) {
	if s.LocateDeclarationFunc != nil {
		return s.LocateDeclarationFunc(startDir)
	}
	return s.RealSystem.LocateDeclaration(startDir)
}

func (s *testSystem) ReadDeclaration(path string) (string, error) {
	if s.ReadDeclarationFunc != nil {
		return s.ReadDeclarationFunc(path)
	}
	return s.RealSystem.ReadDeclaration(path)
}

func (s *testSystem) ExecBinary(path string, args []string, env []string, exit func(int)) error {
	if s.ExecBinaryFunc != nil {
		return s.ExecBinaryFunc(path, args, env, exit)
	}
	return fmt.Errorf("%w: ExecBinary", errNotMocked)
}
