package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// WriteArchive deflates the given files into one zip, each stored under its
// base name.
func WriteArchive(w io.Writer, paths ...string) error {
	zw := zip.NewWriter(w)

	for _, p := range paths {
		if err := addFile(zw, p); err != nil {
			zw.Close()
			return fmt.Errorf("write archive: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("write archive: close: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header %q: %w", path, err)
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create entry %q: %w", hdr.Name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("copy %q: %w", path, err)
	}
	return nil
}
