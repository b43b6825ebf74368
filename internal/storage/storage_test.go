package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/pable/scorefix/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)

func sampleRun(id string, created time.Time, status model.RunStatus) *model.RunSummary {
	return &model.RunSummary{
		ID:         id,
		CreatedAt:  created,
		UpdatedAt:  created,
		InputPath:  "score_log.csv",
		Status:     status,
		Outcome:    model.OutcomeAutoFixed,
		Team1Name:  "Red",
		Team2Name:  "Blue",
		Columns:    []string{"Timestamp", "Red", "Blue", "Timer"},
		TimeLayout: "2006-01-02 15:04:05",
		RawRows:    10,
		CleanRows:  3,
		FinalTeam1: 250,
		FinalTeam2: 180,
		Winner:     model.Team1,
		Stats:      model.Stats{RawRows: 10, PreMatchDropped: 4, Team1: model.TeamStats{GapsFilled: 2}},
		Diagnostics: []model.Diagnostic{
			{Stage: "resample", Code: model.DiagReorderedRows, Message: "1 row(s) held"},
		},
	}
}

func sampleLog() model.Log {
	return model.Log{
		Columns:    []string{"Timestamp", "Red", "Blue", "Timer"},
		TimeLayout: "2006-01-02 15:04:05",
		Records: []model.Record{
			{Time: base, Team1: model.ScoreOf(248), Team2: model.ScoreOf(180), Timer: model.ReadingOf(3.5)},
			{Time: base.Add(time.Second), Team1: model.ScoreOf(249), Team2: model.ScoreOf(180)},
			{Time: base.Add(2 * time.Second), Team1: model.ScoreOf(250), Team2: model.Score{}},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := openMemDB(t)

	run := sampleRun("deadbeef-0000-4000-8000-000000000001", base, model.RunCompleted)
	l := sampleLog()
	if err := db.SaveRun(run, &l); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := db.GetRunByPrefix("deadb")
	if err != nil {
		t.Fatalf("GetRunByPrefix: %v", err)
	}
	if got == nil {
		t.Fatal("expected match for prefix 'deadb'")
	}
	if got.ID != run.ID || got.Status != model.RunCompleted || got.Winner != model.Team1 {
		t.Errorf("unexpected run %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at = %s, want %s", got.CreatedAt, base)
	}
	if len(got.Columns) != 4 || got.Columns[1] != "Red" {
		t.Errorf("columns = %v", got.Columns)
	}
	if got.Stats.PreMatchDropped != 4 || got.Stats.Team1.GapsFilled != 2 {
		t.Errorf("stats = %+v", got.Stats)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Code != model.DiagReorderedRows {
		t.Errorf("diagnostics = %+v", got.Diagnostics)
	}

	none, err := db.GetRunByPrefix("ffffffff")
	if err != nil {
		t.Fatalf("GetRunByPrefix no-match: %v", err)
	}
	if none != nil {
		t.Error("expected nil for unknown prefix")
	}
}

func TestRowsRoundTrip(t *testing.T) {
	db := openMemDB(t)

	run := sampleRun("r1", base, model.RunPending)
	l := sampleLog()
	if err := db.SaveRun(run, &l); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	back, err := db.LoadLog(run)
	if err != nil {
		t.Fatalf("LoadLog: %v", err)
	}
	if back.Len() != 3 {
		t.Fatalf("rows = %d, want 3", back.Len())
	}
	for i, rec := range back.Records {
		want := l.Records[i]
		if !rec.Time.Equal(want.Time) || rec.Team1 != want.Team1 || rec.Team2 != want.Team2 || rec.Timer != want.Timer {
			t.Errorf("row %d = %+v, want %+v", i, rec, want)
		}
	}
	if back.TimeLayout != l.TimeLayout || !back.HasTimer() {
		t.Errorf("shape lost: %q %v", back.TimeLayout, back.Columns)
	}
}

func TestSaveRunIdempotency(t *testing.T) {
	db := openMemDB(t)

	run := sampleRun("r1", base, model.RunPending)
	l := sampleLog()
	if err := db.SaveRun(run, &l); err != nil {
		t.Fatalf("first SaveRun: %v", err)
	}

	// Resolving rewrites the run and replaces its rows.
	run.Status = model.RunCompleted
	run.Outcome = model.OutcomeDecided
	run.UpdatedAt = base.Add(time.Hour)
	run.CreatedAt = base.Add(time.Hour)
	l.Records = l.Records[:2]
	if err := db.SaveRun(run, &l); err != nil {
		t.Fatalf("second SaveRun: %v", err)
	}
	// Metadata-only update keeps the rows.
	if err := db.SaveRun(run, nil); err != nil {
		t.Fatalf("third SaveRun: %v", err)
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run after upserts, got %d", len(runs))
	}
	if runs[0].Status != model.RunCompleted || runs[0].Outcome != model.OutcomeDecided {
		t.Errorf("run not updated: %+v", runs[0])
	}
	if !runs[0].CreatedAt.Equal(base) {
		t.Errorf("created_at should not change on update, got %s", runs[0].CreatedAt)
	}
	back, _ := db.LoadLog(&runs[0])
	if back.Len() != 2 {
		t.Errorf("rows = %d, want 2", back.Len())
	}
}

func TestListRunsAndAmbiguousPrefix(t *testing.T) {
	db := openMemDB(t)

	for i, id := range []string{"aa01", "aa02", "bb01"} {
		if err := db.SaveRun(sampleRun(id, base.Add(time.Duration(i)*time.Minute), model.RunCompleted), nil); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "bb01" {
		t.Errorf("expected newest first, got %v", runs)
	}

	if _, err := db.GetRunByPrefix("aa"); !errors.Is(err, ErrAmbiguousPrefix) {
		t.Errorf("err = %v, want ErrAmbiguousPrefix", err)
	}
}

func TestOverview(t *testing.T) {
	db := openMemDB(t)

	if ov, err := db.GetOverview(); err != nil || ov.TotalRuns != 0 {
		t.Fatalf("empty overview = %+v, %v", ov, err)
	}

	db.SaveRun(sampleRun("r1", base, model.RunCompleted), nil)
	db.SaveRun(sampleRun("r2", base.Add(time.Minute), model.RunCompleted), nil)
	pending := sampleRun("r3", base.Add(2*time.Minute), model.RunPending)
	pending.Outcome = model.OutcomeNeedsDecision
	pending.Diagnostics = nil
	db.SaveRun(pending, nil)

	ov, err := db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if ov.TotalRuns != 3 {
		t.Errorf("total = %d", ov.TotalRuns)
	}
	if ov.ByStatus[model.RunCompleted] != 2 || ov.ByStatus[model.RunPending] != 1 {
		t.Errorf("by status = %v", ov.ByStatus)
	}
	if ov.ByOutcome[model.OutcomeNeedsDecision] != 1 {
		t.Errorf("by outcome = %v", ov.ByOutcome)
	}
	if ov.Diagnostics[model.DiagReorderedRows] != 2 {
		t.Errorf("diagnostics = %v", ov.Diagnostics)
	}
	if !ov.FirstRun.Equal(base) || !ov.LastRun.Equal(base.Add(2*time.Minute)) {
		t.Errorf("range = %s..%s", ov.FirstRun, ov.LastRun)
	}
	if ov.TotalRaw != 30 {
		t.Errorf("raw rows = %d", ov.TotalRaw)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	db.SaveRun(sampleRun("r1", base, model.RunCompleted), nil)

	cols, rows, err := db.QueryRaw(`SELECT id, final_team1, NULL AS nothing FROM runs`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[2] != "nothing" {
		t.Errorf("cols = %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "r1" || rows[0][1] != "250" || rows[0][2] != "NULL" {
		t.Errorf("rows = %v", rows)
	}
}
