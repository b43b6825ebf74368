package cleanse

import "github.com/pable/scorefix/internal/model"

// Smooth repairs each team's score sequence independently, in capture order.
// Every score in the returned log is present.
func Smooth(l model.Log, winning, maxJump int) (out model.Log, team1, team2 model.TeamStats) {
	out = l.Clone()
	team1 = smoothTeam(out.Records, model.Team1, winning, maxJump)
	team2 = smoothTeam(out.Records, model.Team2, winning, maxJump)
	return out, team1, team2
}

// smoothTeam rewrites team t's scores in recs, which the caller owns.
//
// Pass A fills absent readings and holds regressions at the last valid score
// (starting from 0). A reading above winning cannot occur in a real match and
// is handled like an absent one.
//
// Pass B caps every increase at maxJump. It only ever lowers a value, so a
// spike is absorbed over as many rows as it takes to catch up.
func smoothTeam(recs []model.Record, t model.Team, winning, maxJump int) model.TeamStats {
	var st model.TeamStats

	last := 0
	for i := range recs {
		s := recs[i].Score(t)
		switch {
		case !s.Valid:
			st.GapsFilled++
			recs[i].SetScore(t, model.ScoreOf(last))
		case s.Value > winning:
			st.OutOfRange++
			recs[i].SetScore(t, model.ScoreOf(last))
		case s.Value < last:
			st.RegressionsHeld++
			recs[i].SetScore(t, model.ScoreOf(last))
		default:
			last = s.Value
		}
	}

	for i := 1; i < len(recs); i++ {
		prev := recs[i-1].Score(t).Value
		cur := recs[i].Score(t).Value
		if cur-prev > maxJump {
			recs[i].SetScore(t, model.ScoreOf(prev+maxJump))
			st.JumpsClamped++
		}
	}
	return st
}
