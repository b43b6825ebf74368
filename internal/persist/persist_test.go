package persist

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/scorelog"
)

var stamp = time.Date(2025, 5, 1, 20, 15, 30, 0, time.UTC)

func table() *scorelog.Table {
	return &scorelog.Table{
		Path:   "/captures/score_log.csv",
		Header: []string{"Timestamp", "Team 1 Score", "Team 2 Score"},
		Rows: [][]string{
			{"2025-05-01 20:00:00", "None", "0"},
			{"garbage", "1", "x"},
		},
	}
}

func TestBackupName(t *testing.T) {
	opts := BackupOptions{RunID: "0f3a9c12-aaaa-bbbb", Now: stamp}
	if got, want := BackupName("/x/score_log.csv", opts), "original_20250501_201530_0f3a9c12_score_log.csv"; got != want {
		t.Errorf("name = %q, want %q", got, want)
	}
	opts.Compress = true
	if got := BackupName("/x/score_log.csv.zst", opts); got != "original_20250501_201530_0f3a9c12_score_log.csv.zst" {
		t.Errorf("compressed name = %q", got)
	}
}

func TestBackupVerbatim(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw_output_copies")
	opts := BackupOptions{RunID: "abcdef0123", Now: stamp}

	path, err := Backup(dir, table(), opts)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "garbage,1,x") || !strings.Contains(string(data), "None") {
		t.Errorf("backup is not verbatim:\n%s", data)
	}

	// Same name again must not clobber the first backup.
	if _, err := Backup(dir, table(), opts); !errors.Is(err, os.ErrExist) {
		t.Errorf("second backup err = %v, want ErrExist", err)
	}
	again, _ := os.ReadFile(path)
	if !bytes.Equal(again, data) {
		t.Error("existing backup was modified")
	}
}

func TestBackupCompressed(t *testing.T) {
	path, err := Backup(t.TempDir(), table(), BackupOptions{RunID: "run1", Now: stamp, Compress: true})
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		t.Fatalf("path %q lacks .zst", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(plain), "Timestamp,Team 1 Score,Team 2 Score\n") {
		t.Errorf("decoded backup = %q", plain)
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "cleaned_score_log.csv")
	l := model.Log{
		Columns:    []string{"Timestamp", "A", "B"},
		TimeLayout: "2006-01-02 15:04:05",
		Records: []model.Record{
			{Time: stamp, Team1: model.ScoreOf(249), Team2: model.ScoreOf(250)},
		},
	}

	if err := WriteOutput(path, l); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Timestamp,A,B\n2025-05-01 20:15:30,249,250\n"; string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWriteOutputFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the output file makes the rename fail.
	path := filepath.Join(dir, "cleaned_score_log.csv")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "keep"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := WriteOutput(path, model.Log{Columns: []string{"a", "b", "c"}})
	if !errors.Is(err, ErrPersistWrite) {
		t.Fatalf("err = %v, want ErrPersistWrite", err)
	}
	var pwe *PersistWriteError
	if !errors.As(err, &pwe) || pwe.Op != "rename" {
		t.Errorf("err = %#v, want rename failure", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %v", entries)
	}
}
