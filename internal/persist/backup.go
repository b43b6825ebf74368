// Package persist writes run artifacts to disk: the verbatim backup of the
// raw source and the corrected output table.
package persist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pable/scorefix/internal/scorelog"
)

const backupStamp = "20060102_150405"

// BackupOptions names and encodes a backup.
type BackupOptions struct {
	RunID    string
	Now      time.Time
	Compress bool // zstd, adds a .zst suffix
}

// BackupName returns original_<stamp>_<id8>_<base>, where base is the source
// file name with any compression suffix removed.
func BackupName(source string, opts BackupOptions) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".zst"), ".gz")
	id := opts.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("original_%s_%s_%s", opts.Now.Format(backupStamp), id, base)
	if opts.Compress {
		name += ".zst"
	}
	return name
}

// Backup writes t verbatim into dir and returns the file path. An existing
// file is never overwritten.
func Backup(dir string, t *scorelog.Table, opts BackupOptions) (path string, err error) {
	if t == nil {
		return "", fmt.Errorf("backup: no table")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup dir %s: %w", dir, err)
	}
	path = filepath.Join(dir, BackupName(t.Path, opts))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close backup: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
			path = ""
		}
	}()

	var w io.Writer = f
	var enc *zstd.Encoder
	if opts.Compress {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return path, fmt.Errorf("zstd writer: %w", err)
		}
		w = enc
	}
	if err = scorelog.WriteTable(w, t); err != nil {
		if enc != nil {
			enc.Close()
		}
		return path, fmt.Errorf("write backup: %w", err)
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return path, fmt.Errorf("flush backup: %w", err)
		}
	}
	return path, nil
}
