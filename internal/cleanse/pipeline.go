// Package cleanse turns a raw, noisy score log into a clean, monotonic,
// one-row-per-second log whose last row names the winner.
//
// Stages run in a fixed order and each returns a new log:
//
//	Trim → Truncate → Smooth → Resample → Reconcile
//
// When both teams finish one point short of winning, Run returns a Pending
// result instead of blocking; Resume completes it once a winner is known.
package cleanse

import (
	"fmt"

	"github.com/pable/scorefix/internal/model"
)

// Stage names used in diagnostics.
const (
	StageTrim      = "trim"
	StageTruncate  = "truncate"
	StageSmooth    = "smooth"
	StageResample  = "resample"
	StageReconcile = "reconcile"
)

// Pending is a run suspended on an ambiguous final score. It carries the
// already-corrected log so resuming does not repeat earlier stages.
type Pending struct {
	Log         model.Log
	Team1       string
	Team2       string
	Score       int // the score both teams finished on
	Stats       model.Stats
	Diagnostics []model.Diagnostic
}

// Question is a human-readable prompt for the decision.
func (p *Pending) Question() string {
	return fmt.Sprintf("Both %s and %s finished on %d. Which team won? (1 = %s, 2 = %s)",
		p.Team1, p.Team2, p.Score, p.Team1, p.Team2)
}

// Result is the outcome of Run or Resume.
type Result struct {
	Log         model.Log
	Outcome     model.Outcome
	Winner      model.Team // team raised to the winning score, if any
	Pending     *Pending
	Team1       string
	Team2       string
	Stats       model.Stats
	Diagnostics []model.Diagnostic
}

// Done reports whether the run reached a terminal state.
func (r *Result) Done() bool { return r.Pending == nil }

// Complete reports a terminal run whose last row names a single winner.
func (r *Result) Complete() bool {
	if !r.Done() {
		return false
	}
	for _, d := range r.Diagnostics {
		if d.Code == model.DiagNoWinner || d.Code == model.DiagEmptyLog {
			return false
		}
	}
	return true
}

// Pipeline runs the correction stages with a fixed set of options.
type Pipeline struct {
	opts Options
}

// New builds a pipeline.
func New(opts ...Option) *Pipeline {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{opts: o}
}

// Options returns the thresholds in effect.
func (p *Pipeline) Options() Options { return p.opts }

// Run corrects raw. raw is not modified.
func (p *Pipeline) Run(raw model.Log) (*Result, error) {
	w := p.opts.WinningScore
	res := &Result{
		Team1: nameOr(p.opts.Team1Name, raw.TeamName(model.Team1)),
		Team2: nameOr(p.opts.Team2Name, raw.TeamName(model.Team2)),
	}
	res.Stats.RawRows = raw.Len()

	l, dropped, found := Trim(raw, p.opts.TimerRun)
	res.Stats.PreMatchDropped = dropped
	if !found {
		msg := "no timer column; keeping all rows"
		if raw.HasTimer() {
			msg = fmt.Sprintf("no %d consecutive timer readings; keeping all rows", p.opts.TimerRun)
		}
		res.diag(StageTrim, model.DiagNoTimerSignal, msg)
	}

	l, res.Stats.PostMatchDropped = Truncate(l, w)

	l, res.Stats.Team1, res.Stats.Team2 = Smooth(l, w, p.opts.MaxJump)
	if n := res.Stats.Team1.OutOfRange + res.Stats.Team2.OutOfRange; n > 0 {
		res.diag(StageSmooth, model.DiagOutOfRangeScore,
			fmt.Sprintf("%d reading(s) above %d treated as absent", n, w))
	}

	l, rs, err := Resample(l, p.opts.MaxSpan)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	res.Stats.DuplicatesDropped = rs.DuplicatesDropped
	res.Stats.GapRowsFilled = rs.GapRowsFilled
	res.Stats.ReorderedHeld = rs.ReorderedHeld
	if rs.ReorderedHeld > 0 {
		res.diag(StageResample, model.DiagReorderedRows,
			fmt.Sprintf("%d row(s) arrived out of order and were held at the earlier score", rs.ReorderedHeld))
	}

	out, outcome, raised := Reconcile(l, w)
	res.Outcome = outcome
	res.Winner = raised
	if outcome == model.OutcomeNeedsDecision {
		res.Log = out
		res.Stats.OutputRows = out.Len()
		res.Pending = &Pending{
			Log:         out,
			Team1:       res.Team1,
			Team2:       res.Team2,
			Score:       w - 1,
			Stats:       res.Stats,
			Diagnostics: append([]model.Diagnostic(nil), res.Diagnostics...),
		}
		return res, nil
	}

	res.Log = out
	p.finish(res)
	return res, nil
}

// Resume completes a pending run with the chosen winner.
func (p *Pipeline) Resume(pending *Pending, winner model.Team) (*Result, error) {
	if pending == nil {
		return nil, ErrNothingPending
	}
	l, err := ApplyWinner(pending.Log, winner, p.opts.WinningScore)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Log:         l,
		Outcome:     model.OutcomeDecided,
		Winner:      winner,
		Team1:       pending.Team1,
		Team2:       pending.Team2,
		Stats:       pending.Stats,
		Diagnostics: append([]model.Diagnostic(nil), pending.Diagnostics...),
	}
	p.finish(res)
	return res, nil
}

func (p *Pipeline) finish(res *Result) {
	res.Stats.OutputRows = res.Log.Len()
	if d := checkTerminal(res.Log, p.opts.WinningScore); d != nil {
		res.Diagnostics = append(res.Diagnostics, *d)
	}
}

func (r *Result) diag(stage string, code model.DiagnosticCode, msg string) {
	r.Diagnostics = append(r.Diagnostics, model.Diagnostic{Stage: stage, Code: code, Message: msg})
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
