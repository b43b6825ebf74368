package cleanse

import "github.com/pable/scorefix/internal/model"

// Truncate drops rows captured after the match ended. The log ends at the
// first row where either team reached winning; failing that, at the last row
// where either team sat one point short. Otherwise it is kept whole.
func Truncate(l model.Log, winning int) (out model.Log, dropped int) {
	end := -1
	for i, r := range l.Records {
		if r.Team1.Is(winning) || r.Team2.Is(winning) {
			end = i
			break
		}
	}
	if end < 0 {
		near := winning - 1
		for i := len(l.Records) - 1; i >= 0; i-- {
			r := l.Records[i]
			if r.Team1.Is(near) || r.Team2.Is(near) {
				end = i
				break
			}
		}
	}
	if end < 0 {
		return l.Clone(), 0
	}
	return l.WithRecords(l.Records[:end+1]), len(l.Records) - end - 1
}
