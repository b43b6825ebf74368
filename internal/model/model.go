package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Team identifies one of the two competing sides.
type Team int

const (
	TeamNone Team = 0
	Team1    Team = 1
	Team2    Team = 2
)

func (t Team) String() string {
	switch t {
	case Team1:
		return "team1"
	case Team2:
		return "team2"
	default:
		return "?"
	}
}

// Other returns the opposing team.
func (t Team) Other() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	default:
		return TeamNone
	}
}

// ParseTeam accepts "1", "2", "team1" or "team2".
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "team1":
		return Team1, nil
	case "2", "team2":
		return Team2, nil
	}
	return TeamNone, fmt.Errorf("invalid team %q: want 1 or 2", s)
}

// ---- Optional values ----

// Score is a team score reading. Valid is false when the reading was absent.
type Score struct {
	Value int
	Valid bool
}

// ScoreOf returns a present score.
func ScoreOf(v int) Score { return Score{Value: v, Valid: true} }

// Is reports whether the score is present and equal to v.
func (s Score) Is(v int) bool { return s.Valid && s.Value == v }

func (s Score) String() string {
	if !s.Valid {
		return ""
	}
	return strconv.Itoa(s.Value)
}

// Reading is an opaque timer reading; only its presence matters.
type Reading struct {
	Value float64
	Valid bool
}

// ReadingOf returns a present timer reading.
func ReadingOf(v float64) Reading { return Reading{Value: v, Valid: true} }

func (r Reading) String() string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// ---- Score log ----

// Record is one per-second observation.
type Record struct {
	Time  time.Time
	Team1 Score
	Team2 Score
	Timer Reading
}

// Score returns the reading for team t.
func (r Record) Score(t Team) Score {
	if t == Team2 {
		return r.Team2
	}
	return r.Team1
}

// SetScore replaces the reading for team t.
func (r *Record) SetScore(t Team, s Score) {
	if t == Team2 {
		r.Team2 = s
		return
	}
	r.Team1 = s
}

// Log is an ordered sequence of records plus the column shape it was read with.
type Log struct {
	// Columns holds the header names: timestamp, team 1, team 2 and,
	// optionally, the timer column.
	Columns []string
	// TimeLayout is the layout timestamps were parsed with and are written back in.
	TimeLayout string
	Records    []Record
}

// HasTimer reports whether the source carried a timer column.
func (l Log) HasTimer() bool { return len(l.Columns) > 3 }

// Len returns the number of records.
func (l Log) Len() int { return len(l.Records) }

// Last returns the terminal record.
func (l Log) Last() (Record, bool) {
	if len(l.Records) == 0 {
		return Record{}, false
	}
	return l.Records[len(l.Records)-1], true
}

// Clone returns a deep copy that shares nothing with l.
func (l Log) Clone() Log {
	return l.WithRecords(l.Records)
}

// WithRecords returns a log with l's column shape and a private copy of recs.
func (l Log) WithRecords(recs []Record) Log {
	out := Log{
		Columns:    append([]string(nil), l.Columns...),
		TimeLayout: l.TimeLayout,
		Records:    make([]Record, len(recs)),
	}
	copy(out.Records, recs)
	return out
}

// TeamName returns the header of the team's score column, used when no
// match metadata names the teams.
func (l Log) TeamName(t Team) string {
	idx := int(t)
	if idx >= 1 && idx < len(l.Columns) && strings.TrimSpace(l.Columns[idx]) != "" {
		return l.Columns[idx]
	}
	return fmt.Sprintf("Team %d", idx)
}

// ScoreRange returns the min and max present score for team t.
func (l Log) ScoreRange(t Team) (lo, hi int, ok bool) {
	for _, r := range l.Records {
		s := r.Score(t)
		if !s.Valid {
			continue
		}
		if !ok || s.Value < lo {
			lo = s.Value
		}
		if !ok || s.Value > hi {
			hi = s.Value
		}
		ok = true
	}
	return lo, hi, ok
}
