package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"songshift/internal/services"
)

const (
	zipExt        = ".zip"
	partialSuffix = ".partial"
)

// Zipper writes zip archives with entries relative to the source directory.
type Zipper struct{}

// Zip archives every regular file under sourceDir into destWithoutExt + ".zip"
// and returns the archive path. Hidden entries are skipped. The archive is
// written to a temporary name and renamed into place, so a failed run never
// leaves a truncated archive at the final path.
func (Zipper) Zip(ctx context.Context, sourceDir, destWithoutExt string) (string, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return "", services.Wrap(services.ErrUnknown, "archive", "stat", sourceDir, err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrUnknown, "archive", "stat", sourceDir+" is not a directory", nil)
	}

	dest := destWithoutExt + zipExt
	partial := dest + partialSuffix
	if err := writeZip(ctx, sourceDir, partial); err != nil {
		_ = os.Remove(partial)
		return "", services.Wrap(services.ErrUnknown, "archive", "write", dest, err)
	}
	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return "", services.Wrap(services.ErrUnknown, "archive", "rename", dest, err)
	}
	return dest, nil
}

func writeZip(ctx context.Context, sourceDir, dest string) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	walkErr := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == sourceDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		_ = zw.Close()
		return walkErr
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return file.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

// Entries lists the entry names of a zip archive.
func Entries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	if len(names) == 0 {
		return nil, errors.New("archive is empty")
	}
	return names, nil
}
