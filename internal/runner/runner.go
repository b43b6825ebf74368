// Package runner drives one correction run end to end: load, back up,
// correct, persist, record. A run that needs a winner decision is recorded
// as pending and completed later by Decide or Resolve.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pable/scorefix/internal/cleanse"
	"github.com/pable/scorefix/internal/config"
	"github.com/pable/scorefix/internal/logger"
	"github.com/pable/scorefix/internal/metrics"
	"github.com/pable/scorefix/internal/model"
	"github.com/pable/scorefix/internal/persist"
	"github.com/pable/scorefix/internal/scorelog"
)

var (
	// ErrRunNotFound is returned by Resolve for an unknown run ID prefix.
	ErrRunNotFound = errors.New("run not found")
	// ErrNotPending is returned by Resolve for a run that needs no decision.
	ErrNotPending = errors.New("run is not pending")
	// ErrNoStore is returned by Resolve when the runner has no run store.
	ErrNoStore = errors.New("no run store configured")
)

// Store persists run history.
type Store interface {
	SaveRun(r *model.RunSummary, rows *model.Log) error
	GetRunByPrefix(prefix string) (*model.RunSummary, error)
	LoadLog(r *model.RunSummary) (model.Log, error)
}

// Runner orchestrates runs.
type Runner struct {
	log          logger.Logger
	store        Store
	metrics      *metrics.Manager
	metricsFile  string
	now          func() time.Time
	newID        func() string
	match        *config.Match
	pipelineOpts []cleanse.Option
	outputPath   string
	outputSet    bool
	backupDir    string
	compress     bool
	debounce     time.Duration
}

// Report is the result of a run. When Pending is true, Result.Pending holds
// the question and the run is stored with status pending.
type Report struct {
	Run    *model.RunSummary
	Result *cleanse.Result
	Log    model.Log
}

// Pending reports whether the run awaits a winner decision.
func (r *Report) Pending() bool {
	return r != nil && r.Result != nil && !r.Result.Done()
}

// New builds a runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		log:        logger.Discard(),
		now:        time.Now,
		newID:      uuid.NewString,
		outputPath: "cleaned_score_log.csv",
		debounce:   500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) pipeline() *cleanse.Pipeline {
	opts := append([]cleanse.Option(nil), r.pipelineOpts...)
	if t1, t2 := r.match.TeamNames(); t1 != "" || t2 != "" {
		opts = append(opts, cleanse.WithTeamNames(t1, t2))
	}
	return cleanse.New(opts...)
}

// Run corrects the score log at input. Missing or malformed sources abort
// before anything is written. A pending result is not an error.
func (r *Runner) Run(ctx context.Context, input string) (*Report, error) {
	now := r.now().UTC()
	run := &model.RunSummary{
		ID:         r.newID(),
		CreatedAt:  now,
		UpdatedAt:  now,
		InputPath:  input,
		OutputPath: r.outputPath,
	}
	log := r.log.With(logger.String("run_id", run.ShortID()))
	log.Info(ctx, "run started", logger.String("input", input))

	start := r.now()
	tbl, err := scorelog.Read(input)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	raw, parsed, err := scorelog.Parse(tbl)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	r.observePhase(metrics.PhaseLoad, start)

	run.Columns = raw.Columns
	run.TimeLayout = raw.TimeLayout
	var pre []model.Diagnostic
	pre = append(pre, parsed.Diagnostics...)

	if r.backupDir != "" {
		start = r.now()
		path, err := persist.Backup(r.backupDir, tbl, persist.BackupOptions{RunID: run.ID, Now: now, Compress: r.compress})
		if err != nil {
			log.Error(ctx, "backup failed; continuing", logger.Error(err))
			pre = append(pre, model.Diagnostic{Stage: "backup", Code: model.DiagBackupFailed, Message: err.Error()})
		} else {
			run.BackupPath = path
			log.Debug(ctx, "raw input backed up", logger.String("path", path))
		}
		r.observePhase(metrics.PhaseBackup, start)
	}

	start = r.now()
	p := r.pipeline()
	res, err := p.Run(raw)
	r.observePhase(metrics.PhaseCorrect, start)
	if err != nil {
		run.Status = model.RunFailed
		run.Diagnostics = pre
		run.Stats.RawRows = raw.Len() + parsed.Unreadable
		run.Stats.UnreadableRows = parsed.Unreadable
		return nil, r.fail(ctx, run, fmt.Errorf("correct %s: %w", input, err))
	}

	res.Stats.UnreadableRows = parsed.Unreadable
	res.Stats.RawRows = raw.Len() + parsed.Unreadable
	res.Diagnostics = append(pre, res.Diagnostics...)
	run.Team1Name, run.Team2Name = res.Team1, res.Team2
	for _, d := range res.Diagnostics {
		log.Warn(ctx, d.Message, logger.String("stage", d.Stage), logger.String("code", string(d.Code)))
	}

	rep := &Report{Run: run, Result: res, Log: res.Log}
	if !res.Done() {
		res.Pending.Stats = res.Stats
		res.Pending.Diagnostics = res.Diagnostics
		fill(run, res)
		run.Status = model.RunPending
		log.Info(ctx, "winner decision needed", logger.String("question", res.Pending.Question()))
		if err := r.save(run, &res.Pending.Log); err != nil {
			return rep, err
		}
		r.observe(ctx, run)
		return rep, nil
	}

	if err := r.complete(ctx, run, res); err != nil {
		return rep, err
	}
	return rep, nil
}

// Decide completes a pending report from Run in the same process.
func (r *Runner) Decide(ctx context.Context, rep *Report, winner model.Team) (*Report, error) {
	if !rep.Pending() {
		return nil, cleanse.ErrNothingPending
	}
	res, err := r.pipeline().Resume(rep.Result.Pending, winner)
	if err != nil {
		return nil, err
	}
	run := *rep.Run
	if err := r.complete(ctx, &run, res); err != nil {
		return &Report{Run: &run, Result: res, Log: res.Log}, err
	}
	return &Report{Run: &run, Result: res, Log: res.Log}, nil
}

// Resolve completes a stored pending run. Earlier stages are not re-run; the
// stored corrected rows are resumed directly. The output goes to the path
// recorded with the run unless WithOutput was given.
func (r *Runner) Resolve(ctx context.Context, idPrefix string, winner model.Team) (*Report, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	run, err := r.store.GetRunByPrefix(idPrefix)
	if err != nil {
		return nil, fmt.Errorf("find run %q: %w", idPrefix, err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, idPrefix)
	}
	if run.Status != model.RunPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, run.ShortID(), run.Status)
	}
	l, err := r.store.LoadLog(run)
	if err != nil {
		return nil, fmt.Errorf("load rows of %s: %w", run.ShortID(), err)
	}

	p := r.pipeline()
	pending := &cleanse.Pending{
		Log:         l,
		Team1:       run.Team1Name,
		Team2:       run.Team2Name,
		Score:       p.Options().WinningScore - 1,
		Stats:       run.Stats,
		Diagnostics: run.Diagnostics,
	}
	res, err := p.Resume(pending, winner)
	if err != nil {
		return nil, err
	}
	if r.outputSet {
		run.OutputPath = r.outputPath
	}
	rep := &Report{Run: run, Result: res, Log: res.Log}
	return rep, r.complete(ctx, run, res)
}

// complete writes the output of a terminal result and records the run.
func (r *Runner) complete(ctx context.Context, run *model.RunSummary, res *cleanse.Result) error {
	fill(run, res)
	run.UpdatedAt = r.now().UTC()

	start := r.now()
	if err := persist.WriteOutput(run.OutputPath, res.Log); err != nil {
		r.observePhase(metrics.PhaseWrite, start)
		return r.fail(ctx, run, err)
	}
	r.observePhase(metrics.PhaseWrite, start)

	run.Status = model.RunCompleted
	r.log.Info(ctx, "run completed",
		logger.String("run_id", run.ShortID()),
		logger.String("outcome", string(run.Outcome)),
		logger.String("final", run.FinalScore()),
		logger.String("output", run.OutputPath),
		logger.Int("rows", run.CleanRows))
	if err := r.save(run, &res.Log); err != nil {
		return err
	}
	r.observe(ctx, run)
	return nil
}

// fail records a failed run and returns cause.
func (r *Runner) fail(ctx context.Context, run *model.RunSummary, cause error) error {
	run.Status = model.RunFailed
	run.Error = cause.Error()
	run.UpdatedAt = r.now().UTC()
	r.log.Error(ctx, "run failed", logger.String("run_id", run.ShortID()), logger.Error(cause))
	if err := r.save(run, nil); err != nil {
		r.log.Error(ctx, "record failed run", logger.Error(err))
	}
	r.observe(ctx, run)
	return cause
}

func (r *Runner) save(run *model.RunSummary, rows *model.Log) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.SaveRun(run, rows); err != nil {
		return fmt.Errorf("record run %s: %w", run.ShortID(), err)
	}
	return nil
}

func (r *Runner) observe(ctx context.Context, run *model.RunSummary) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveRun(run)
	if r.metricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.metricsFile); err != nil {
		r.log.Warn(ctx, "metrics textfile not written", logger.Error(err))
	}
}

func (r *Runner) observePhase(phase string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObservePhase(phase, r.now().Sub(start))
	}
}

// fill copies a pipeline result into the run summary.
func fill(run *model.RunSummary, res *cleanse.Result) {
	run.Outcome = res.Outcome
	run.Winner = res.Winner
	run.Team1Name, run.Team2Name = res.Team1, res.Team2
	run.Stats = res.Stats
	run.Diagnostics = res.Diagnostics
	run.RawRows = res.Stats.RawRows
	run.CleanRows = res.Log.Len()
	run.FinalTeam1, run.FinalTeam2 = 0, 0
	if last, ok := res.Log.Last(); ok {
		run.FinalTeam1 = last.Team1.Value
		run.FinalTeam2 = last.Team2.Value
	}
}
