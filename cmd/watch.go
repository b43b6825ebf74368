package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/runner"
)

var watchCmd = &cobra.Command{
	Use:   "watch [score_log.csv]",
	Short: "Re-run the correction whenever the score log changes",
	Long: `Watch the score log while the tracker writes it and re-run the correction
after every burst of changes. Runs needing a winner decision are stored as
pending and can be answered with 'scorefix resolve'. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&runOut, "out", "o", "", "cleaned output path (default from config)")
	watchCmd.Flags().StringVar(&runMatch, "match", "", "match metadata file naming the teams")
	watchCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

func runWatch(cmd *cobra.Command, args []string) error {
	applyRunFlags(cmd)
	input := cfg.InputPath
	if len(args) == 1 {
		input = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := newRunner(ctx, db, runner.WithOutput(cfg.OutputPath))
	if err != nil {
		return err
	}

	cMuted.Fprintf(os.Stdout, "watching %s (Ctrl-C to stop)\n", input)
	return r.Watch(ctx, input, func(rep *runner.Report, err error) {
		if err != nil {
			cError.Fprintf(os.Stderr, "run failed: %v\n", err)
			return
		}
		status := rep.Run.Status
		if rep.Pending() {
			cWarn.Fprintf(os.Stdout, "%s  %s  pending: %s\n", rep.Run.ShortID(), rep.Run.FinalScore(), rep.Result.Pending.Question())
			return
		}
		fmt.Fprintf(os.Stdout, "%s  %s  %s  %s (%d rows)\n",
			rep.Run.ShortID(), status, rep.Run.Outcome, rep.Run.FinalScore(), rep.Run.CleanRows)
	})
}
