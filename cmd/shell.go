package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/report"
	"github.com/pable/scorefix/internal/runner"
	"github.com/pable/scorefix/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the run database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := newRunner(ctx, db, runner.WithOutput(cfg.OutputPath))
	if err != nil {
		return err
	}
	// Pending runs keep the output path they were recorded with.
	resolver, err := newRunner(ctx, db)
	if err != nil {
		return err
	}

	cGreeting.Println("scorefix shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("scorefix")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db, args)
		case "pending":
			shellPending(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <run-id-prefix> [--rows N]")
				continue
			}
			rows := 0
			for i := 1; i+1 < len(args); i++ {
				if args[i] == "--rows" {
					rows, _ = strconv.Atoi(args[i+1])
				}
			}
			shellShow(db, args[0], rows)
		case "run":
			input := cfg.InputPath
			if len(args) > 0 {
				input = args[0]
			}
			shellRun(ctx, r, input)
		case "resolve":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, "usage: resolve <run-id-prefix> <1|2>")
				continue
			}
			shellResolve(ctx, resolver, args[0], args[1])
		case "sql":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			if err := printQuery(os.Stdout, db, strings.Join(args, " ")); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list [N]", "list the N most recent runs (default 20)"},
		{"pending", "list runs waiting for a winner decision"},
		{"show <id-prefix> [--rows N]", "show a recorded run"},
		{"run [score_log.csv]", "correct a score log"},
		{"resolve <id-prefix> <1|2>", "choose the winner of a pending run"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-32s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB, args []string) {
	limit := 20
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}
	runs, err := db.ListRuns(limit)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(runs) == 0 {
		cMuted.Println("No runs recorded yet.")
		return
	}
	report.PrintRunList(os.Stdout, runs)
}

func shellPending(db *storage.DB) {
	runs, err := db.ListRuns(0)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	var pending []model.RunSummary
	for _, r := range runs {
		if r.Status == model.RunPending {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		cMuted.Println("Nothing pending.")
		return
	}
	report.PrintRunList(os.Stdout, pending)
}

func shellShow(db *storage.DB, prefix string, rows int) {
	found, err := showRun(os.Stdout, db, prefix, rows)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if !found {
		cWarn.Fprintf(os.Stderr, "no run found with prefix %q\n", prefix)
	}
}

func shellRun(ctx context.Context, r *runner.Runner, input string) {
	rep, err := r.Run(ctx, input)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	printReport(rep)
	if rep.Pending() {
		fmt.Println()
		cWarn.Println(rep.Result.Pending.Question())
		cMuted.Printf("answer with: resolve %s <1|2>\n", rep.Run.ShortID())
	}
}

func shellResolve(ctx context.Context, r *runner.Runner, prefix, answer string) {
	winner, err := model.ParseTeam(answer)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	rep, err := r.Resolve(ctx, prefix, winner)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	printReport(rep)
}
