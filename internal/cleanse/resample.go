package cleanse

import (
	"fmt"
	"sort"
	"time"

	"github.com/pable/scorefix/internal/model"
)

// ResampleStats counts what Resample changed.
type ResampleStats struct {
	DuplicatesDropped int
	GapRowsFilled     int
	ReorderedHeld     int
}

// Resample puts the log on an exact one-row-per-second grid.
//
// Rows are sorted by timestamp and duplicate timestamps keep their last
// occurrence. Each grid second from the first to the last timestamp takes the
// scores of the most recent row at or before it, so gaps are forward-filled
// and no score is invented. Filled rows have no timer reading. A row that
// only sorted into place can show a lower score than the row before it; such
// scores are held at the earlier value so the sequence stays non-decreasing.
func Resample(l model.Log, maxSpan time.Duration) (model.Log, ResampleStats, error) {
	var st ResampleStats
	if len(l.Records) == 0 {
		return l.Clone(), st, nil
	}

	sorted := make([]model.Record, len(l.Records))
	copy(sorted, l.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	deduped := sorted[:0:0]
	for _, r := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(r.Time) {
			deduped[n-1] = r
			st.DuplicatesDropped++
			continue
		}
		deduped = append(deduped, r)
	}

	start, end := deduped[0].Time, deduped[len(deduped)-1].Time
	span := end.Sub(start)
	if maxSpan > 0 && span > maxSpan {
		return model.Log{}, st, fmt.Errorf("%w: %s > %s", ErrSpanTooLarge, span, maxSpan)
	}

	out := make([]model.Record, 0, int(span/time.Second)+1)
	cur := deduped[0]
	j := 0
	for ts := start; !ts.After(end); ts = ts.Add(time.Second) {
		consumed := false
		for j < len(deduped) && !deduped[j].Time.After(ts) {
			cur = deduped[j]
			consumed = true
			j++
		}
		rec := cur
		rec.Time = ts
		if !consumed {
			// Only scores carry forward; the clock was not read this second.
			rec.Timer = model.Reading{}
			st.GapRowsFilled++
		}
		if n := len(out); n > 0 && holdMonotonic(&rec, out[n-1]) {
			st.ReorderedHeld++
		}
		out = append(out, rec)
	}

	return l.WithRecords(out), st, nil
}

// holdMonotonic raises rec's scores to prev's where they would otherwise drop.
func holdMonotonic(rec *model.Record, prev model.Record) bool {
	held := false
	for _, t := range []model.Team{model.Team1, model.Team2} {
		p, c := prev.Score(t), rec.Score(t)
		if p.Valid && c.Valid && c.Value < p.Value {
			rec.SetScore(t, p)
			held = true
		}
	}
	return held
}
