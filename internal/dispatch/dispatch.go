// Package dispatch wires the pipeline together: declaration lookup, toolchain
// materialization, and the final process hand-off.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tarnstead/zigpin/internal/cache"
	"github.com/tarnstead/zigpin/internal/config"
	"github.com/tarnstead/zigpin/internal/download"
	"github.com/tarnstead/zigpin/internal/index"
	"github.com/tarnstead/zigpin/internal/install"
	"github.com/tarnstead/zigpin/internal/messages"
	"github.com/tarnstead/zigpin/internal/platform"
	"github.com/tarnstead/zigpin/internal/project"
)

// ErrDelegated signals that execution has been handed off to the toolchain.
var ErrDelegated = errors.New(messages.DispatchErrDelegated)

var detectPlatform = platform.Detect

// Run resolves the pinned toolchain for cwd, installs it when missing, and
// replaces the current process with it. args is the full argv of this
// process; everything after args[0] reaches the toolchain verbatim. It
// returns ErrDelegated once execution has been handed off; on platforms that
// spawn instead of exec, exit receives the child's exit code first.
func Run(args []string, cwd string, progress io.Writer, exit func(int)) error {
	return RunWithSystem(RealSystem{}, args, cwd, progress, exit)
}

// RunWithSystem is Run with an injectable System.
func RunWithSystem(sys System, args []string, cwd string, progress io.Writer, exit func(int)) error {
	if sys == nil {
		return fmt.Errorf(messages.DispatchSystemRequired)
	}
	if len(args) == 0 {
		return fmt.Errorf(messages.DispatchMissingArgv0)
	}
	if cwd == "" {
		return fmt.Errorf(messages.DispatchWorkingDirRequired)
	}
	if exit == nil {
		return fmt.Errorf(messages.DispatchExitHandlerRequired)
	}

	spec, err := requestedSpec(sys, cwd)
	if err != nil {
		return err
	}

	plat, err := detectPlatform()
	if err != nil {
		return err
	}

	root, err := cache.DefaultRoot(sys.Getenv)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root, sys.Getenv)
	if err != nil {
		return err
	}

	offline := strings.TrimSpace(sys.Getenv(config.EnvOffline)) != ""
	resolver := index.NewClient(cfg.IndexURL, cfg.BuildsURL)
	fetcher := download.NewFetcher(cfg.MaxDownloadBytes, progress)
	manager := install.NewManager(root, plat, resolver, fetcher, progress, offline)

	installDir, err := manager.Ensure(context.Background(), spec)
	if err != nil {
		return err
	}

	bin := filepath.Join(installDir, plat.ExeName())
	execArgs := append([]string{bin}, args[1:]...)
	if err := sys.ExecBinary(bin, execArgs, sys.Environ(), exit); err != nil {
		return err
	}
	return ErrDelegated
}

// requestedSpec returns the version spec from the environment override or the
// project declaration, in that order.
func requestedSpec(sys System, cwd string) (string, error) {
	if override := strings.TrimSpace(sys.Getenv(config.EnvVersionOverride)); override != "" {
		return override, nil
	}

	path, found, err := sys.LocateDeclaration(cwd)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.New(messages.ProjectDeclarationNotFound)
	}
	raw, err := sys.ReadDeclaration(path)
	if err != nil {
		return "", err
	}
	return project.ParseSpec(raw, path)
}
