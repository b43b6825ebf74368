package model

import (
	"strconv"
	"time"
)

// Outcome is the terminal state reached by the final-score reconciler.
type Outcome string

const (
	OutcomeNoFixNeeded   Outcome = "no_fix_needed"
	OutcomeAutoFixed     Outcome = "auto_fixed"
	OutcomeNeedsDecision Outcome = "needs_decision"
	OutcomeDecided       Outcome = "decided"
)

// DiagnosticCode classifies a non-fatal condition found during a run.
type DiagnosticCode string

const (
	DiagNoTimerSignal       DiagnosticCode = "no_timer_signal"
	DiagUnreadableTimestamp DiagnosticCode = "unreadable_timestamp"
	DiagOutOfRangeScore     DiagnosticCode = "out_of_range_score"
	DiagReorderedRows       DiagnosticCode = "reordered_rows"
	DiagNoWinner            DiagnosticCode = "no_winner"
	DiagEmptyLog            DiagnosticCode = "empty_log"
	DiagBackupFailed        DiagnosticCode = "backup_failed"
)

// Diagnostic is a non-fatal condition reported alongside a completed run.
type Diagnostic struct {
	Stage   string         `json:"stage"`
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`
}

// TeamStats counts the repairs the smoother made to one team's sequence.
type TeamStats struct {
	GapsFilled      int `json:"gaps_filled"`
	RegressionsHeld int `json:"regressions_held"`
	OutOfRange      int `json:"out_of_range"`
	JumpsClamped    int `json:"jumps_clamped"`
}

// Stats summarises what each stage did to the log.
type Stats struct {
	RawRows           int       `json:"raw_rows"`
	UnreadableRows    int       `json:"unreadable_rows"`
	PreMatchDropped   int       `json:"pre_match_dropped"`
	PostMatchDropped  int       `json:"post_match_dropped"`
	Team1             TeamStats `json:"team1"`
	Team2             TeamStats `json:"team2"`
	DuplicatesDropped int       `json:"duplicates_dropped"`
	GapRowsFilled     int       `json:"gap_rows_filled"`
	ReorderedHeld     int       `json:"reordered_held"`
	OutputRows        int       `json:"output_rows"`
}

// Team returns the smoother counters for team t.
func (s *Stats) Team(t Team) *TeamStats {
	if t == Team2 {
		return &s.Team2
	}
	return &s.Team1
}

// ---- Run history ----

// RunStatus is the lifecycle state of a stored run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPending   RunStatus = "pending"
	RunFailed    RunStatus = "failed"
)

// RunSummary is one row of run history.
type RunSummary struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	InputPath   string
	BackupPath  string
	OutputPath  string
	Status      RunStatus
	Outcome     Outcome
	Team1Name   string
	Team2Name   string
	Columns     []string
	TimeLayout  string
	RawRows     int
	CleanRows   int
	FinalTeam1  int
	FinalTeam2  int
	Winner      Team
	Stats       Stats
	Diagnostics []Diagnostic
	Error       string
}

// FinalScore formats the terminal score as "t1-t2".
func (r *RunSummary) FinalScore() string {
	if r.CleanRows == 0 {
		return "—"
	}
	return strconv.Itoa(r.FinalTeam1) + "-" + strconv.Itoa(r.FinalTeam2)
}

// ShortID returns the first eight characters of the run ID.
func (r *RunSummary) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
