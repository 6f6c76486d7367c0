package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// File is an archive entry backed by a file on disk.
type File struct {
	// Name is the slash-separated path inside the archive.
	Name string
	Path string
}

// WriteArchive streams files into a zip archive written to w. Entries keep
// the order of files.
func WriteArchive(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		if err := addFile(zw, f); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, f File) error {
	name := strings.TrimLeft(strings.ReplaceAll(f.Name, "\\", "/"), "/")
	if name == "" {
		return fmt.Errorf("zip: empty entry name for %s", f.Path)
	}
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", f.Path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("zip: stat %s: %w", f.Path, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip: header %s: %w", f.Path, err)
	}
	header.Name = name
	// Images are already compressed.
	header.Method = zip.Store

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("zip: write %s: %w", name, err)
	}
	return nil
}
