// Package project locates and parses the per-project toolchain declaration.
package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tarnstead/zigpin/internal/messages"
)

const (
	// DeclarationFile is the marker file holding the pinned toolchain version.
	DeclarationFile = ".zigversion"
	// DevChannel is the reserved version token for master development builds.
	DevChannel = "master"
	// MaxDeclarationSize bounds how much of a declaration file is read.
	MaxDeclarationSize = 1024
)

// ErrMultiline reports a declaration with content on more than one line.
var ErrMultiline = errors.New(messages.ProjectDeclarationMultiline)

// Locate searches startDir and its ancestors for a declaration file.
// It returns the file path and true on a match, or false once the
// filesystem root has been searched without one.
func Locate(startDir string) (string, bool, error) {
	if startDir == "" {
		return "", false, errors.New(messages.ProjectStartDirRequired)
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf(messages.ProjectResolvePathFmt, startDir, err)
	}
	for {
		candidate := filepath.Join(dir, DeclarationFile)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", false, fmt.Errorf(messages.ProjectDeclarationIsDirFmt, candidate)
			}
			return candidate, true, nil
		}
		if !os.IsNotExist(err) {
			return "", false, fmt.Errorf(messages.ProjectCheckPathFmt, candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Read returns the raw declaration content at path, bounded by MaxDeclarationSize.
func Read(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf(messages.ProjectReadDeclarationFmt, path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxDeclarationSize+1))
	if err != nil {
		return "", fmt.Errorf(messages.ProjectReadDeclarationFmt, path, err)
	}
	if len(data) > MaxDeclarationSize {
		return "", fmt.Errorf(messages.ProjectDeclarationTooLargeFmt, path, MaxDeclarationSize)
	}
	return string(data), nil
}

// ParseSpec validates raw declaration content and returns the version spec.
// Surrounding whitespace is trimmed; an empty declaration requests the
// development channel. Content spanning multiple lines is rejected, since a
// declaration holds exactly one version token.
func ParseSpec(raw string, source string) (string, error) {
	spec := strings.TrimSpace(raw)
	if spec == "" {
		return DevChannel, nil
	}
	if strings.ContainsAny(spec, "\r\n") {
		return "", fmt.Errorf(messages.ProjectDeclarationInvalidFmt, ErrMultiline, source)
	}
	return spec, nil
}
