package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/scorelog"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintRunHeader prints a one-line summary header for the run.
func PrintRunHeader(w io.Writer, r *model.RunSummary) {
	outcome := string(r.Outcome)
	if outcome == "" {
		outcome = "—"
	}
	fmt.Fprintf(w, "\nRun: %s  |  %s  |  Status: %s  |  Outcome: %s  |  Final: %s vs %s %s\n\n",
		r.ShortID(), r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Status, outcome,
		r.Team1Name, r.Team2Name, r.FinalScore())
	if r.OutputPath != "" {
		fmt.Fprintf(w, "Output: %s\n", r.OutputPath)
	}
	if r.BackupPath != "" {
		fmt.Fprintf(w, "Backup: %s\n", r.BackupPath)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "Error:  %s\n", r.Error)
	}
}

// PrintStageTable prints what each correction stage changed.
func PrintStageTable(w io.Writer, st model.Stats) {
	table := newTable(w)
	table.Header("STAGE", "CHANGED", "DETAIL")

	smoothed := 0
	for _, ts := range []model.TeamStats{st.Team1, st.Team2} {
		smoothed += ts.GapsFilled + ts.RegressionsHeld + ts.OutOfRange + ts.JumpsClamped
	}

	table.Append("load", strconv.Itoa(st.UnreadableRows),
		fmt.Sprintf("%d raw rows, %d unreadable", st.RawRows, st.UnreadableRows))
	table.Append("trim", strconv.Itoa(st.PreMatchDropped),
		fmt.Sprintf("%d pre-match rows dropped", st.PreMatchDropped))
	table.Append("truncate", strconv.Itoa(st.PostMatchDropped),
		fmt.Sprintf("%d post-match rows dropped", st.PostMatchDropped))
	table.Append("smooth", strconv.Itoa(smoothed), "see team table")
	table.Append("resample", strconv.Itoa(st.DuplicatesDropped+st.GapRowsFilled+st.ReorderedHeld),
		fmt.Sprintf("%d duplicates, %d gap rows, %d held", st.DuplicatesDropped, st.GapRowsFilled, st.ReorderedHeld))
	table.Append("output", strconv.Itoa(st.OutputRows), "rows written")
	table.Render()
}

// PrintTeamTable prints per-team smoothing counters and the score range of l.
func PrintTeamTable(w io.Writer, r *model.RunSummary, l model.Log) {
	table := newTable(w)
	table.Header("TEAM", "NAME", "FINAL", "RANGE", "GAPS", "REGRESSIONS", "OUT_OF_RANGE", "CLAMPED")

	for _, t := range []model.Team{model.Team1, model.Team2} {
		name, final := r.Team1Name, r.FinalTeam1
		if t == model.Team2 {
			name, final = r.Team2Name, r.FinalTeam2
		}
		rng := "—"
		if lo, hi, ok := l.ScoreRange(t); ok {
			rng = fmt.Sprintf("%d - %d", lo, hi)
		}
		finalStr := "—"
		if r.CleanRows > 0 {
			finalStr = strconv.Itoa(final)
		}
		if r.Winner == t {
			finalStr += " *"
		}
		ts := r.Stats.Team(t)
		table.Append(
			t.String(),
			name,
			finalStr,
			rng,
			strconv.Itoa(ts.GapsFilled),
			strconv.Itoa(ts.RegressionsHeld),
			strconv.Itoa(ts.OutOfRange),
			strconv.Itoa(ts.JumpsClamped),
		)
	}
	table.Render()
}

// PrintDiagnostics prints non-fatal conditions; nothing when there are none.
func PrintDiagnostics(w io.Writer, ds []model.Diagnostic) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- Diagnostics ---\n\n")
	table := tablewriter.NewTable(w)
	table.Header("STAGE", "CODE", "MESSAGE")
	for _, d := range ds {
		table.Append(d.Stage, string(d.Code), d.Message)
	}
	table.Render()
}

// PrintRunList prints stored runs, newest first.
func PrintRunList(w io.Writer, runs []model.RunSummary) {
	table := newTable(w)
	table.Header("ID", "CREATED", "STATUS", "OUTCOME", "TEAMS", "FINAL", "RAW", "CLEAN", "DIAG")
	for i := range runs {
		r := &runs[i]
		table.Append(
			r.ShortID(),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(r.Status),
			string(r.Outcome),
			r.Team1Name+" vs "+r.Team2Name,
			r.FinalScore(),
			strconv.Itoa(r.RawRows),
			strconv.Itoa(r.CleanRows),
			strconv.Itoa(len(r.Diagnostics)),
		)
	}
	table.Render()
}

// PrintRows prints up to limit rows of l; limit <= 0 prints all of them.
func PrintRows(w io.Writer, l model.Log, limit int) {
	n := l.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	table := newTable(w)
	header := []any{"#", "TIME", l.TeamName(model.Team1), l.TeamName(model.Team2)}
	if l.HasTimer() {
		header = append(header, "TIMER")
	}
	table.Header(header...)
	for i := 0; i < n; i++ {
		rec := l.Records[i]
		row := []any{
			strconv.Itoa(i + 1),
			scorelog.FormatTime(rec.Time, l.TimeLayout),
			orDash(rec.Team1.String()),
			orDash(rec.Team2.String()),
		}
		if l.HasTimer() {
			row = append(row, orDash(rec.Timer.String()))
		}
		table.Append(row...)
	}
	table.Render()
	if n < l.Len() {
		fmt.Fprintf(w, "(%d of %d rows)\n", n, l.Len())
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
