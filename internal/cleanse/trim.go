package cleanse

import "github.com/pable/scorefix/internal/model"

// Trim drops rows captured before the match clock started running: it keeps
// the log from the first index that begins run consecutive present timer
// readings. found is false, and the log is returned whole, when the log has
// no timer column or no such run exists.
func Trim(l model.Log, run int) (out model.Log, dropped int, found bool) {
	if run < 1 {
		run = 1
	}
	if !l.HasTimer() {
		return l.Clone(), 0, false
	}
	recs := l.Records
	streak := 0
	for i := range recs {
		if !recs[i].Timer.Valid {
			streak = 0
			continue
		}
		streak++
		if streak == run {
			start := i - run + 1
			return l.WithRecords(recs[start:]), start, true
		}
	}
	return l.Clone(), 0, false
}
