package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/runner"
)

var resolveWinner string

var resolveCmd = &cobra.Command{
	Use:   "resolve <run-id-prefix>",
	Short: "Choose the winner of a pending run and write its output",
	Long: `Complete a run that stopped because both teams finished one point short
of the winning score. The stored corrected rows are reused; the raw log is
not read again.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveWinner, "winner", "", "winning team (1 or 2)")
	resolveCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the output here instead of the path recorded with the run")
	_ = resolveCmd.MarkFlagRequired("winner")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	winner, err := model.ParseTeam(resolveWinner)
	if err != nil {
		return err
	}
	var extra []runner.Option
	if cmd.Flags().Changed("out") {
		extra = append(extra, runner.WithOutput(runOut))
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := newRunner(ctx, db, extra...)
	if err != nil {
		return err
	}
	rep, err := r.Resolve(ctx, args[0], winner)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	printReport(rep)
	fmt.Fprintf(os.Stdout, "\nWrote %s\n", rep.Run.OutputPath)
	return nil
}
