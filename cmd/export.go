package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/scorelog"
)

var (
	exportFormat string
	exportOut    string
	exportNoRows bool
)

// exportRun is the JSON document written by export --format json.
type exportRun struct {
	ID          string             `json:"id"`
	CreatedAt   string             `json:"created_at"`
	Status      model.RunStatus    `json:"status"`
	Outcome     model.Outcome      `json:"outcome,omitempty"`
	InputPath   string             `json:"input_path"`
	BackupPath  string             `json:"backup_path,omitempty"`
	OutputPath  string             `json:"output_path"`
	Team1       string             `json:"team1"`
	Team2       string             `json:"team2"`
	Winner      string             `json:"winner,omitempty"`
	Final       [2]int             `json:"final"`
	Stats       model.Stats        `json:"stats"`
	Diagnostics []model.Diagnostic `json:"diagnostics"`
	Rows        []exportRow        `json:"rows,omitempty"`
}

// exportRow is one second of the stored log. Absent scores are null.
type exportRow struct {
	Time  string   `json:"time"`
	Team1 *int     `json:"team1"`
	Team2 *int     `json:"team2"`
	Timer *float64 `json:"timer,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export <run-id-prefix>",
	Short: "Export a recorded run as CSV or JSON",
	Long: `Write the stored rows of a run. CSV output has the same columns as the
raw score log; JSON output also carries the run metadata, stage counts and
diagnostics.

Example:
  scorefix export 3f2a --format json --out run.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportNoRows, "no-rows", false, "json only: omit the rows")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q: want csv or json", exportFormat)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRunByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no run found with ID prefix %q", args[0])
	}
	l, err := db.LoadLog(run)
	if err != nil {
		return fmt.Errorf("load rows: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	if exportFormat == "csv" {
		err = scorelog.Write(w, l)
	} else {
		err = writeRunJSON(w, run, l, !exportNoRows)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", run.ShortID(), err)
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	}
	return nil
}

func writeRunJSON(w io.Writer, run *model.RunSummary, l model.Log, withRows bool) error {
	doc := exportRun{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339),
		Status:      run.Status,
		Outcome:     run.Outcome,
		InputPath:   run.InputPath,
		BackupPath:  run.BackupPath,
		OutputPath:  run.OutputPath,
		Team1:       run.Team1Name,
		Team2:       run.Team2Name,
		Final:       [2]int{run.FinalTeam1, run.FinalTeam2},
		Stats:       run.Stats,
		Diagnostics: run.Diagnostics,
	}
	if run.Winner != model.TeamNone {
		doc.Winner = run.Winner.String()
	}
	if doc.Diagnostics == nil {
		doc.Diagnostics = []model.Diagnostic{}
	}
	if withRows {
		doc.Rows = make([]exportRow, 0, l.Len())
		for _, rec := range l.Records {
			row := exportRow{Time: scorelog.FormatTime(rec.Time, l.TimeLayout)}
			if rec.Team1.Valid {
				v := rec.Team1.Value
				row.Team1 = &v
			}
			if rec.Team2.Valid {
				v := rec.Team2.Value
				row.Team2 = &v
			}
			if rec.Timer.Valid {
				v := rec.Timer.Value
				row.Timer = &v
			}
			doc.Rows = append(doc.Rows, row)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
