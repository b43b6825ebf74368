package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/report"
	"github.com/pable/scorefix/internal/runner"
)

var (
	runOut            string
	runBackupDir      string
	runMatch          string
	runWinner         string
	runPrompt         bool
	runCompressBackup bool
	runMetricsFile    string
	runRows           int
)

var runCmd = &cobra.Command{
	Use:   "run [score_log.csv]",
	Short: "Correct a score log and record the run",
	Long: `Back up the raw score log, correct it, and write the cleaned table.

When both teams finish one point short of the winning score the winner
cannot be read from the log. The run is then stored as pending: answer
with --winner, --prompt, or later with 'scorefix resolve <run-id>'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "cleaned output path (default from config)")
	runCmd.Flags().StringVar(&runBackupDir, "backup-dir", "", "directory for raw backups (default from config)")
	runCmd.Flags().StringVar(&runMatch, "match", "", "match metadata file naming the teams")
	runCmd.Flags().StringVar(&runWinner, "winner", "", "winner to apply if a decision is needed (1 or 2)")
	runCmd.Flags().BoolVar(&runPrompt, "prompt", false, "ask on stdin if a decision is needed")
	runCmd.Flags().BoolVar(&runCompressBackup, "compress-backup", false, "zstd-compress the raw backup")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	runCmd.Flags().IntVar(&runRows, "rows", 0, "print the first N corrected rows")
}

// applyRunFlags overrides config with flags given on the command line.
func applyRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("out") {
		cfg.OutputPath = runOut
	}
	if f.Changed("backup-dir") {
		cfg.BackupDir = runBackupDir
	}
	if f.Changed("match") {
		cfg.MatchFile = runMatch
	}
	if f.Changed("compress-backup") && runCompressBackup {
		cfg.BackupCompression = "zstd"
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = runMetricsFile
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	applyRunFlags(cmd)
	input := cfg.InputPath
	if len(args) == 1 {
		input = args[0]
	}

	var winner model.Team
	if runWinner != "" {
		t, err := model.ParseTeam(runWinner)
		if err != nil {
			return err
		}
		winner = t
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := newRunner(ctx, db, runner.WithOutput(cfg.OutputPath))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Correcting %s...\n", input)
	rep, err := r.Run(ctx, input)
	if err != nil {
		if rep != nil {
			printReport(rep)
		}
		return err
	}

	if rep.Pending() {
		if winner == model.TeamNone && runPrompt {
			winner, err = promptWinner(rep)
			if err != nil {
				return err
			}
		}
		if winner == model.TeamNone {
			printReport(rep)
			printPending(rep)
			return nil
		}
		rep, err = r.Decide(ctx, rep, winner)
		if err != nil {
			return err
		}
	}
	printReport(rep)
	return nil
}

func printReport(rep *runner.Report) {
	report.PrintRunHeader(os.Stdout, rep.Run)
	report.PrintStageTable(os.Stdout, rep.Run.Stats)
	report.PrintTeamTable(os.Stdout, rep.Run, rep.Log)
	report.PrintDiagnostics(os.Stdout, rep.Run.Diagnostics)
	if runRows > 0 {
		report.PrintRows(os.Stdout, rep.Log, runRows)
	}
}

func printPending(rep *runner.Report) {
	fmt.Fprintln(os.Stdout)
	cWarn.Fprintln(os.Stdout, rep.Result.Pending.Question())
	fmt.Fprintf(os.Stdout, "No output written. Decide with:\n  scorefix resolve %s --winner 1|2\n", rep.Run.ShortID())
}

// promptWinner asks on stdin until a valid team is entered.
func promptWinner(rep *runner.Report) (model.Team, error) {
	in := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Println(rep.Result.Pending.Question())
		cMuted.Print("> ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return model.TeamNone, fmt.Errorf("read answer: %w", err)
			}
			return model.TeamNone, nil
		}
		t, err := model.ParseTeam(strings.TrimSpace(in.Text()))
		if err == nil {
			return t, nil
		}
		cError.Fprintln(os.Stderr, "please enter 1 or 2")
	}
}
