package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

// ArchiveFile describes one entry for the archive builders. A Name ending in
// "/" creates a directory; a non-empty Link creates a symlink pointing at it.
type ArchiveFile struct {
	Name string
	Body string
	Mode int64
	Link string
}

// TarXZBytes builds an xz-compressed tar archive holding files, in order.
// t is the active test; files are the entries to write.
func TarXZBytes(t *testing.T, files []ArchiveFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	xzw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("create xz writer: %v", err)
	}
	tw := tar.NewWriter(xzw)
	for _, f := range files {
		hdr := &tar.Header{Name: f.Name, Mode: f.Mode, Size: int64(len(f.Body))}
		switch {
		case f.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = f.Link
			hdr.Size = 0
		case strings.HasSuffix(f.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		default:
			hdr.Typeflag = tar.TypeReg
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", f.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(f.Body)); err != nil {
				t.Fatalf("write tar body %s: %v", f.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := xzw.Close(); err != nil {
		t.Fatalf("close xz writer: %v", err)
	}
	return buf.Bytes()
}

// ZipBytes builds a zip archive holding files, in order.
// t is the active test; files are the entries to write.
func ZipBytes(t *testing.T, files []ArchiveFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Deflate}
		if strings.HasSuffix(f.Name, "/") {
			hdr.SetMode(os.FileMode(f.Mode) | os.ModeDir)
		} else {
			hdr.SetMode(os.FileMode(f.Mode))
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("write zip header %s: %v", f.Name, err)
		}
		if !strings.HasSuffix(f.Name, "/") {
			if _, err := w.Write([]byte(f.Body)); err != nil {
				t.Fatalf("write zip body %s: %v", f.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteTarXZ writes an xz-compressed tar archive at path.
// t is the active test; path is the output file; files are the entries to write.
func WriteTarXZ(t *testing.T, path string, files []ArchiveFile) {
	t.Helper()
	if err := os.WriteFile(path, TarXZBytes(t, files), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

// WriteZip writes a zip archive at path.
// t is the active test; path is the output file; files are the entries to write.
func WriteZip(t *testing.T, path string, files []ArchiveFile) {
	t.Helper()
	if err := os.WriteFile(path, ZipBytes(t, files), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

// ToolchainArchive builds a release archive in the layout the download
// server publishes: one top-level directory wrapping the entry binary and a
// lib tree.
// t is the active test; top is the wrapper directory name; exe is the entry binary file name.
func ToolchainArchive(t *testing.T, top, exe string) []byte {
	t.Helper()
	return TarXZBytes(t, []ArchiveFile{
		{Name: top + "/", Mode: 0o755},
		{Name: top + "/" + exe, Body: "#!/bin/sh\nexit 0\n", Mode: 0o755},
		{Name: top + "/lib/", Mode: 0o755},
		{Name: top + "/lib/std.zig", Body: "// stub stdlib\n", Mode: 0o644},
	})
}

// SHA256Hex returns the lowercase hex digest of data.
// data is the raw content to hash.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
