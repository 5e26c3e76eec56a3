// Package persist stores index files atomically.
//
// An index is a pair of files: the stats record and the index file. A
// rebuild replaces both without a reader ever observing a partially written
// file. Each file is written to a temporary file in the target directory,
// synced and closed, then renamed over its target. Files are renamed in
// the order given, so the last one (the stats record) is the commit point:
// a reader that loads the stats record first sees either the old pair, the
// new pair, or an old stats record with a new index file, which fails
// validation and is retried.
package persist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File extensions of the two files of an index.
const (
	StatsExt = ".pstats"
	IndexExt = ".pidx"
)

// StatsPath returns the path of the stats record of index name in dir.
func StatsPath(dir, name string) string {
	return filepath.Join(dir, name+StatsExt)
}

// IndexPath returns the path of the index file of index name in dir.
func IndexPath(dir, name string) string {
	return filepath.Join(dir, name+IndexExt)
}

// File is one file of an atomically saved set.
type File struct {
	// Name is the file name relative to the target directory.
	Name string
	// Write writes the complete file content.
	Write func(io.Writer) error
}

// Bytes returns a File whose content is data.
func Bytes(name string, data []byte) File {
	return File{
		Name: name,
		Write: func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		},
	}
}

// SaveFiles writes files into dir atomically, one rename per file.
//
// All files are written and synced before the first rename. If any write
// fails, every temporary file is removed and no target is changed. Renames
// happen in the order of files; put the commit file last.
//
// Parameters:
//   - dir: Target directory, created if missing
//   - files: Files to write
//
// Returns:
//   - error: Error wrapped with the failing file name
func SaveFiles(dir string, files ...File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: failed to create directory %s: %w", dir, err)
	}

	tempFiles := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range tempFiles {
			_ = os.Remove(tmp)
		}
	}()

	for _, f := range files {
		tmp, err := writeTemp(dir, f)
		if tmp != "" {
			tempFiles = append(tempFiles, tmp)
		}
		if err != nil {
			return err
		}
	}

	for i, f := range files {
		if err := os.Rename(tempFiles[i], filepath.Join(dir, f.Name)); err != nil {
			return fmt.Errorf("persist: failed to rename %s: %w", f.Name, err)
		}
		tempFiles[i] = ""
	}
	tempFiles = nil

	// Best-effort: fsync directory so the renames survive a crash.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}

// writeTemp writes f to a new temporary file in dir and returns its path.
// The path is returned even on error so the caller can remove it.
func writeTemp(dir string, f File) (string, error) {
	tmp, err := os.CreateTemp(dir, f.Name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("persist: failed to create temp file for %s: %w", f.Name, err)
	}

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return tmp.Name(), fmt.Errorf("persist: failed to write %s: %w", f.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return tmp.Name(), fmt.Errorf("persist: failed to sync %s: %w", f.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return tmp.Name(), fmt.Errorf("persist: failed to close %s: %w", f.Name, err)
	}

	return tmp.Name(), nil
}

// LoadFile reads the whole file at path.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: failed to read %s: %w", path, err)
	}

	return data, nil
}
