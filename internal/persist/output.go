package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/scorelog"
)

// ErrPersistWrite is the kind of every output write failure.
var ErrPersistWrite = errors.New("persist write")

// PersistWriteError reports that the corrected table could not be written.
type PersistWriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistWriteError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrPersistWrite, e.Op, e.Path, e.Err)
}

func (e *PersistWriteError) Unwrap() []error {
	return []error{ErrPersistWrite, e.Err}
}

// WriteOutput writes l to path through a temp file in the same directory, so
// path either keeps its old content or holds the complete new table.
func WriteOutput(path string, l model.Log) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistWriteError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &PersistWriteError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := scorelog.Write(tmp, l); err != nil {
		return &PersistWriteError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &PersistWriteError{Path: path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistWriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &PersistWriteError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &PersistWriteError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
