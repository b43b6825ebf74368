package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/report"
	"github.com/pable/scorefix/internal/storage"
)

var showRows int

var showCmd = &cobra.Command{
	Use:   "show <run-id-prefix>",
	Short: "Show a recorded run by ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVar(&showRows, "rows", 0, "print the first N stored rows (-1 = all)")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	found, err := showRun(os.Stdout, db, args[0], showRows)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(os.Stderr, "No run found with ID prefix %q\n", args[0])
	}
	return nil
}

// showRun prints a stored run. rows > 0 prints that many stored rows, rows < 0
// all of them.
func showRun(w io.Writer, db *storage.DB, prefix string, rows int) (bool, error) {
	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return false, fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		return false, nil
	}
	l, err := db.LoadLog(run)
	if err != nil {
		return true, fmt.Errorf("load rows: %w", err)
	}

	report.PrintRunHeader(w, run)
	report.PrintStageTable(w, run.Stats)
	report.PrintTeamTable(w, run, l)
	report.PrintDiagnostics(w, run.Diagnostics)
	if run.Status == model.RunPending {
		fmt.Fprintf(w, "\nPending: decide with 'scorefix resolve %s --winner 1|2'\n", run.ShortID())
	}
	if rows != 0 && l.Len() > 0 {
		fmt.Fprintln(w)
		report.PrintRows(w, l, max(rows, 0))
	}
	return true, nil
}
