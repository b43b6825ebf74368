package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of recorded runs",
	Long: `Display aggregate statistics about all recorded runs:
run count, date range, rows read and written, status and outcome
breakdowns, and how often each diagnostic was raised.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalRuns == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded yet. Run 'scorefix run <score_log.csv>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Run Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Runs recorded : %d\n", ov.TotalRuns)
	fmt.Fprintf(os.Stdout, "  Date range    : %s → %s\n",
		ov.FirstRun.Local().Format("2006-01-02 15:04"), ov.LastRun.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(os.Stdout, "  Rows read     : %d\n", ov.TotalRaw)
	fmt.Fprintf(os.Stdout, "  Rows written  : %d\n", ov.TotalClean)

	status := map[string]int{}
	for k, n := range ov.ByStatus {
		status[string(k)] = n
	}
	printCounts("Status", "STATUS", status)

	outcomes := map[string]int{}
	for k, n := range ov.ByOutcome {
		outcomes[string(k)] = n
	}
	printCounts("Outcomes", "OUTCOME", outcomes)

	// Diagnostics, only when any were raised.
	if len(ov.Diagnostics) > 0 {
		diags := map[string]int{}
		for k, n := range ov.Diagnostics {
			diags[string(k)] = n
		}
		printCounts("Diagnostics", "CODE", diags)
	}
	return nil
}

// printCounts renders a two-column count table sorted by count, then key.
func printCounts(title, label string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(os.Stdout, "\n--- %s ---\n\n", title)
	t := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	t.Header(label, "RUNS")
	for _, k := range keys {
		t.Append(k, fmt.Sprintf("%d", counts[k]))
	}
	t.Render()
}
