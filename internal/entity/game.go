package entity

type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
)

// Outcome is the board evaluation after a single move.
type Outcome string

const (
	OutcomeContinue Outcome = "CONTINUE"
	OutcomeWin      Outcome = "WIN"
	OutcomeDraw     Outcome = "DRAW"
)

func (that Outcome) IsTerminal() bool {
	return that == OutcomeWin || that == OutcomeDraw
}

// Result is how a finished room ended.
type Result string

const (
	ResultNone      Result = ""
	ResultWin       Result = "WIN"
	ResultDraw      Result = "DRAW"
	ResultAbandoned Result = "ABANDONED"
	ResultTimedOut  Result = "TIMED_OUT"
)

// PlayerResult is what a single player gets out of a finished game.
type PlayerResult string

const (
	PlayerWin  PlayerResult = "win"
	PlayerLoss PlayerResult = "loss"
	PlayerDraw PlayerResult = "draw"
)

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Wins   int64  `json:"wins"`
	Losses int64  `json:"losses"`
	Draws  int64  `json:"draws"`
}

// Apply increments the counter matching result.
func (that *LeaderboardEntry) Apply(result PlayerResult) {
	switch result {
	case PlayerWin:
		that.Wins++
	case PlayerLoss:
		that.Losses++
	case PlayerDraw:
		that.Draws++
	}
}
