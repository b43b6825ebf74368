package scorelog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pable/scorefix/internal/model"
)

const sampleCSV = "Timestamp,Team 1 Score,Team 2 Score,Timer\n" +
	"2025-05-01 20:00:00,None,None,\n" +
	"2025-05-01 20:00:01,0,0,599.5\n" +
	"2025-05-01 20:00:02,3.0,abc,598\n" +
	"not a time,4,4,597\n" +
	"\n" +
	"2025-05-01 20:00:04,-2,7,\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCoercesCells(t *testing.T) {
	path := writeFile(t, "score_log.csv", sampleCSV)

	l, rep, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !l.HasTimer() {
		t.Fatal("expected timer column")
	}
	if l.Len() != 4 {
		t.Fatalf("rows = %d, want 4", l.Len())
	}
	if rep.Unreadable != 1 || len(rep.Diagnostics) != 1 {
		t.Fatalf("report = %+v, want one unreadable row", rep)
	}
	if rep.Diagnostics[0].Code != model.DiagUnreadableTimestamp {
		t.Errorf("diag code = %s", rep.Diagnostics[0].Code)
	}
	if !strings.Contains(rep.Diagnostics[0].Message, "line 5") {
		t.Errorf("diag message %q should name line 5", rep.Diagnostics[0].Message)
	}

	r0, r1, r2, r3 := l.Records[0], l.Records[1], l.Records[2], l.Records[3]
	if r0.Team1.Valid || r0.Team2.Valid || r0.Timer.Valid {
		t.Errorf("row 0 should be all absent: %+v", r0)
	}
	if !r1.Team1.Is(0) || !r1.Team2.Is(0) || !r1.Timer.Valid {
		t.Errorf("row 1 = %+v", r1)
	}
	if !r2.Team1.Is(3) || r2.Team2.Valid {
		t.Errorf("row 2 = %+v, want 3 and absent", r2)
	}
	if r3.Team1.Valid || !r3.Team2.Is(7) {
		t.Errorf("row 3 = %+v, negative score should be absent", r3)
	}
	if got := l.TeamName(model.Team2); got != "Team 2 Score" {
		t.Errorf("team name = %q", got)
	}
}

func TestLoadWithoutTimer(t *testing.T) {
	path := writeFile(t, "score_log.csv", "ts,A,B\n1714593600,1,2\n1714593601,2,2\n")

	l, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.HasTimer() {
		t.Error("three-column log should not have a timer")
	}
	if l.TimeLayout != LayoutUnix {
		t.Errorf("layout = %q, want unix", l.TimeLayout)
	}
	if got := l.Records[1].Time.Sub(l.Records[0].Time); got != time.Second {
		t.Errorf("delta = %s", got)
	}
}

func TestLoadMissingSource(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
	var mse *MissingSourceError
	if !errors.As(err, &mse) || mse.Path == "" {
		t.Errorf("expected *MissingSourceError with a path, got %T", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause should be preserved")
	}
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"two columns": "Timestamp,Team 1 Score\n2025-05-01 20:00:00,1\n",
		"blank head":  "\n\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Load(writeFile(t, "score_log.csv", body))
			if !errors.Is(err, ErrMalformedSource) {
				t.Fatalf("err = %v, want ErrMalformedSource", err)
			}
		})
	}
}

func TestLoadZstd(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "score_log.csv.zst", buf.String())

	l, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() != 4 {
		t.Errorf("rows = %d, want 4", l.Len())
	}
}

func TestWriteKeepsShape(t *testing.T) {
	tbl, err := ReadFrom("mem", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	l, _, err := Parse(tbl)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Timestamp,Team 1 Score,Team 2 Score,Timer" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2025-05-01 20:00:00,,," {
		t.Errorf("absent row = %q", lines[1])
	}
	if lines[3] != "2025-05-01 20:00:02,3,,598" {
		t.Errorf("row = %q", lines[3])
	}

	back, _, err := Parse(mustRead(t, buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != l.Len() || back.TimeLayout != l.TimeLayout {
		t.Errorf("reparse changed shape: %d/%q vs %d/%q", back.Len(), back.TimeLayout, l.Len(), l.TimeLayout)
	}
}

func TestWriteTableVerbatim(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	var buf bytes.Buffer
	if err := WriteTable(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "not a time,4,4,597") {
		t.Error("verbatim copy lost an unreadable row")
	}
}

func mustRead(t *testing.T, body string) *Table {
	t.Helper()
	tbl, err := ReadFrom("mem", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}
