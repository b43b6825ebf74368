package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the run database",
	Long: `Run an arbitrary SQL query against the run database and print results as a table.

Schema overview:
  runs(id, created_at, updated_at, input_path, backup_path, output_path,
    status, outcome, team1_name, team2_name, columns JSON, time_layout,
    raw_rows, clean_rows, final_team1, final_team2, winner, stats JSON,
    diagnostics JSON, error)
  run_rows(run_id, seq, ts, team1, team2, timer)

Absent scores are NULL in run_rows. Timestamps are UTC text, e.g.
  SELECT id, final_team1, final_team2 FROM runs WHERE status = 'pending'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	return printQuery(os.Stdout, db, strings.Join(args, " "))
}

// printQuery runs query and renders the result set.
func printQuery(w io.Writer, db *storage.DB, query string) error {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return nil
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header(toAny(cols)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
