package cleanse

import (
	"fmt"

	"github.com/pable/scorefix/internal/model"
)

// Reconcile inspects the terminal row. If exactly one team finished one point
// short of winning while the other is below that, the match ended normally and
// was clipped: that team is raised to winning. If both teams finished one
// point short the winner cannot be read from the scores and the outcome is
// OutcomeNeedsDecision; the log is returned unchanged.
func Reconcile(l model.Log, winning int) (out model.Log, outcome model.Outcome, raised model.Team) {
	last, ok := l.Last()
	if !ok {
		return l.Clone(), model.OutcomeNoFixNeeded, model.TeamNone
	}
	near := winning - 1
	t1, t2 := last.Team1, last.Team2
	switch {
	case t1.Is(near) && t2.Is(near):
		return l.Clone(), model.OutcomeNeedsDecision, model.TeamNone
	case t1.Is(near) && below(t2, near):
		raised = model.Team1
	case t2.Is(near) && below(t1, near):
		raised = model.Team2
	default:
		return l.Clone(), model.OutcomeNoFixNeeded, model.TeamNone
	}
	out, _ = ApplyWinner(l, raised, winning)
	return out, model.OutcomeAutoFixed, raised
}

// ApplyWinner sets the winner's terminal score to winning and leaves the rest
// of the log untouched.
func ApplyWinner(l model.Log, winner model.Team, winning int) (model.Log, error) {
	if winner != model.Team1 && winner != model.Team2 {
		return model.Log{}, ErrInvalidWinner
	}
	if len(l.Records) == 0 {
		return model.Log{}, fmt.Errorf("apply winner: empty log")
	}
	out := l.Clone()
	out.Records[len(out.Records)-1].SetScore(winner, model.ScoreOf(winning))
	return out, nil
}

// below treats an absent reading as below any threshold.
func below(s model.Score, v int) bool {
	return !s.Valid || s.Value < v
}

// checkTerminal reports a log whose last row does not name a single winner.
func checkTerminal(l model.Log, winning int) *model.Diagnostic {
	last, ok := l.Last()
	if !ok {
		return &model.Diagnostic{Stage: StageReconcile, Code: model.DiagEmptyLog, Message: "no rows left after correction"}
	}
	t1, t2 := last.Team1, last.Team2
	if (t1.Is(winning) && below(t2, winning)) || (t2.Is(winning) && below(t1, winning)) {
		return nil
	}
	return &model.Diagnostic{
		Stage:   StageReconcile,
		Code:    model.DiagNoWinner,
		Message: fmt.Sprintf("final row %s-%s has no single team at %d", t1, t2, winning),
	}
}
