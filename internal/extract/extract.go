// Package extract unpacks release archives into install directories.
package extract

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tarnstead/zigpin/internal/messages"
	"github.com/ulikunitz/xz"
)

// Extract unpacks the archive at archivePath into destDir. Release archives
// wrap their contents in a single top-level directory named after the
// release; that wrapper is stripped so the toolchain lands directly in
// destDir. The format is chosen by file extension.
func Extract(archivePath, destDir string) error {
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		return extractTarXZ(archivePath, destDir)
	case strings.HasSuffix(archivePath, ".zip"):
		return extractZip(archivePath, destDir)
	default:
		return fmt.Errorf(messages.ExtractUnsupportedFormatFmt, archivePath)
	}
}

func extractTarXZ(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf(messages.ExtractOpenArchiveFmt, archivePath, err)
	}
	defer func() { _ = f.Close() }()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf(messages.ExtractXZStreamFmt, err)
	}

	tr := tar.NewReader(xzr)
	var strip stripper
	entries := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf(messages.ExtractReadArchiveFmt, archivePath, err)
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			// pax metadata, no payload
			continue
		}
		entries++

		rel, err := strip.rel(hdr.Name, hdr.Typeflag == tar.TypeDir)
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}

		target := filepath.Join(destDir, rel)
		if !within(destDir, target) {
			return fmt.Errorf(messages.ExtractIllegalPathFmt, hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf(messages.ExtractCreateDirFmt, target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) || !within(destDir, filepath.Join(filepath.Dir(target), hdr.Linkname)) {
				return fmt.Errorf(messages.ExtractIllegalLinkFmt, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf(messages.ExtractCreateDirFmt, filepath.Dir(target), err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf(messages.ExtractSymlinkFmt, target, err)
			}
		default:
			return fmt.Errorf(messages.ExtractUnsupportedEntryFmt, hdr.Name)
		}
	}
	if entries == 0 {
		return fmt.Errorf(messages.ExtractEmptyArchiveFmt, archivePath)
	}
	return nil
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf(messages.ExtractOpenArchiveFmt, archivePath, err)
	}
	defer func() { _ = r.Close() }()

	if len(r.File) == 0 {
		return fmt.Errorf(messages.ExtractEmptyArchiveFmt, archivePath)
	}

	var strip stripper
	for _, f := range r.File {
		rel, err := strip.rel(f.Name, f.FileInfo().IsDir())
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}

		target := filepath.Join(destDir, rel)
		if !within(destDir, target) {
			return fmt.Errorf(messages.ExtractIllegalPathFmt, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, f.Mode()); err != nil {
				return fmt.Errorf(messages.ExtractCreateDirFmt, target, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf(messages.ExtractReadArchiveFmt, archivePath, err)
		}
		err = writeFile(target, rc, f.Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// stripper tracks the top-level directory shared by every archive entry and
// rewrites entry names relative to it.
type stripper struct {
	top string
}

func (s *stripper) rel(name string, isDir bool) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if clean == "." || clean == "" {
		return "", nil
	}
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf(messages.ExtractIllegalPathFmt, name)
	}
	top, rest, _ := strings.Cut(clean, "/")
	if rest == "" && !isDir {
		return "", fmt.Errorf(messages.ExtractNoTopLevelFmt, name)
	}
	switch s.top {
	case "":
		s.top = top
	case top:
	default:
		return "", fmt.Errorf(messages.ExtractSecondTopLevelFmt, s.top, top)
	}
	return rest, nil
}

func within(root, target string) bool {
	root = filepath.Clean(root)
	target = filepath.Clean(target)
	return target == root || strings.HasPrefix(target, root+string(os.PathSeparator))
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf(messages.ExtractCreateDirFmt, filepath.Dir(target), err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf(messages.ExtractCreateFileFmt, target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf(messages.ExtractWriteFileFmt, target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf(messages.ExtractWriteFileFmt, target, err)
	}
	return nil
}
