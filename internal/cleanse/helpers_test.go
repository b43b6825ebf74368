package cleanse_test

import (
	"time"

	"github.com/pable/scorefix/internal/model"
)

var t0 = time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)

var none = model.Score{}

func sc(v int) model.Score { return model.ScoreOf(v) }

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func rec(sec int, a, b model.Score) model.Record {
	return model.Record{Time: at(sec), Team1: a, Team2: b}
}

func timed(sec int, a, b model.Score, timer bool) model.Record {
	r := rec(sec, a, b)
	if timer {
		r.Timer = model.ReadingOf(float64(600 - sec))
	}
	return r
}

func logOf(recs ...model.Record) model.Log {
	return model.Log{
		Columns:    []string{"Timestamp", "Team 1 Score", "Team 2 Score"},
		TimeLayout: "2006-01-02 15:04:05",
		Records:    recs,
	}
}

func timerLog(recs ...model.Record) model.Log {
	l := logOf(recs...)
	l.Columns = append(l.Columns, "Timer")
	return l
}

func scores(l model.Log, t model.Team) []int {
	out := make([]int, len(l.Records))
	for i, r := range l.Records {
		out[i] = r.Score(t).Value
	}
	return out
}

func seconds(l model.Log) []int {
	out := make([]int, len(l.Records))
	for i, r := range l.Records {
		out[i] = int(r.Time.Sub(t0) / time.Second)
	}
	return out
}
