package cleanse

import "time"

// Defaults tuned for a 250-point match sampled once per second.
const (
	DefaultWinningScore = 250
	DefaultMaxJump      = 10
	DefaultTimerRun     = 2
	DefaultMaxSpan      = 24 * time.Hour
)

// Options controls the correction thresholds.
type Options struct {
	// WinningScore ends a match when reached. WinningScore-1 is the
	// ambiguous "one point short" value the truncator and reconciler look for.
	WinningScore int
	// MaxJump is the largest plausible per-row score increase.
	MaxJump int
	// TimerRun is how many consecutive present timer readings mark match start.
	TimerRun int
	// MaxSpan bounds the resampled grid; a longer log is rejected.
	MaxSpan time.Duration
	// Team1Name and Team2Name label the teams in a pending decision.
	// Empty names fall back to the score column headers.
	Team1Name string
	Team2Name string
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		WinningScore: DefaultWinningScore,
		MaxJump:      DefaultMaxJump,
		TimerRun:     DefaultTimerRun,
		MaxSpan:      DefaultMaxSpan,
	}
}

// WithWinningScore sets the match-winning threshold.
func WithWinningScore(n int) Option {
	return func(o *Options) {
		if n > 1 {
			o.WinningScore = n
		}
	}
}

// WithMaxJump sets the per-row jump cap.
func WithMaxJump(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxJump = n
		}
	}
}

// WithTimerRun sets how many consecutive timer readings anchor match start.
func WithTimerRun(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.TimerRun = n
		}
	}
}

// WithMaxSpan bounds the resampled time span.
func WithMaxSpan(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.MaxSpan = d
		}
	}
}

// WithTeamNames labels the teams.
func WithTeamNames(team1, team2 string) Option {
	return func(o *Options) {
		o.Team1Name = team1
		o.Team2Name = team2
	}
}
