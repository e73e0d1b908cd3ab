package game

import "fmt"

type OutcomeKind int

const (
	// NoWinner means the evaluation could not name a single winner.
	NoWinner OutcomeKind = iota
	PlayerWin
	TeamWin
	// Draw is the explicit result of two or more teams sharing the top score.
	Draw
)

func (k OutcomeKind) String() string {
	switch k {
	case NoWinner:
		return "no winner"
	case PlayerWin:
		return "player"
	case TeamWin:
		return "team"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

type Outcome struct {
	Kind   OutcomeKind
	Player PlayerView
	Team   TeamID
}

func NoOutcome() Outcome {
	return Outcome{Kind: NoWinner, Team: NoTeam}
}

func DrawOutcome() Outcome {
	return Outcome{Kind: Draw, Team: NoTeam}
}

func PlayerOutcome(view PlayerView) Outcome {
	return Outcome{Kind: PlayerWin, Player: view, Team: view.Team}
}

func TeamOutcome(team TeamID) Outcome {
	return Outcome{Kind: TeamWin, Team: team}
}

func (o Outcome) Decided() bool {
	return o.Kind != NoWinner
}

func (o Outcome) String() string {
	switch o.Kind {
	case PlayerWin:
		return fmt.Sprintf("%s wins", o.Player)
	case TeamWin:
		return fmt.Sprintf("team %d wins", o.Team)
	default:
		return o.Kind.String()
	}
}
