package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pable/scorefix/internal/model"
)

func sampleRun() *model.RunSummary {
	return &model.RunSummary{
		ID:         "0f3a9c12-1111-4222-8333-444455556666",
		CreatedAt:  time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC),
		Status:     model.RunCompleted,
		Outcome:    model.OutcomeAutoFixed,
		Team1Name:  "Red",
		Team2Name:  "Blue",
		CleanRows:  2,
		FinalTeam1: 250,
		FinalTeam2: 201,
		Winner:     model.Team1,
		Stats: model.Stats{
			RawRows:         12,
			PreMatchDropped: 3,
			Team2:           model.TeamStats{RegressionsHeld: 7},
		},
	}
}

func sampleLog() model.Log {
	t0 := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	return model.Log{
		Columns:    []string{"Timestamp", "Red", "Blue"},
		TimeLayout: "2006-01-02 15:04:05",
		Records: []model.Record{
			{Time: t0, Team1: model.ScoreOf(240), Team2: model.ScoreOf(199)},
			{Time: t0.Add(time.Second), Team1: model.ScoreOf(250), Team2: model.Score{}},
		},
	}
}

func TestPrintRunHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintRunHeader(&buf, sampleRun())
	out := buf.String()
	for _, want := range []string{"0f3a9c12", "auto_fixed", "Red vs Blue 250-201"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTeamTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTeamTable(&buf, sampleRun(), sampleLog())
	out := buf.String()
	for _, want := range []string{"240 - 250", "199 - 199", "250 *", "Blue"} {
		if !strings.Contains(out, want) {
			t.Errorf("team table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRowsLimit(t *testing.T) {
	var buf bytes.Buffer
	PrintRows(&buf, sampleLog(), 1)
	out := buf.String()
	if !strings.Contains(out, "2025-05-01 20:00:00") {
		t.Errorf("first row missing:\n%s", out)
	}
	if strings.Contains(out, "20:00:01") {
		t.Errorf("limit not applied:\n%s", out)
	}
	if !strings.Contains(out, "(1 of 2 rows)") {
		t.Errorf("missing row count:\n%s", out)
	}
}

func TestPrintDiagnosticsEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintDiagnostics(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	PrintDiagnostics(&buf, []model.Diagnostic{{Stage: "trim", Code: model.DiagNoTimerSignal, Message: "no timer column"}})
	if !strings.Contains(buf.String(), "no_timer_signal") {
		t.Errorf("diagnostic missing:\n%s", buf.String())
	}
}

func TestPrintStageAndList(t *testing.T) {
	var buf bytes.Buffer
	PrintStageTable(&buf, sampleRun().Stats)
	if !strings.Contains(buf.String(), "3 pre-match rows dropped") {
		t.Errorf("stage table:\n%s", buf.String())
	}

	buf.Reset()
	PrintRunList(&buf, []model.RunSummary{*sampleRun()})
	if !strings.Contains(buf.String(), "Red vs Blue") {
		t.Errorf("run list:\n%s", buf.String())
	}
}
