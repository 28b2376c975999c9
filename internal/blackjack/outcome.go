package blackjack

// Outcome is the settled result of a session from the player's side.
type Outcome string

const (
	OutcomeNone Outcome = ""
	PlayerWin   Outcome = "PlayerWin"
	PlayerLoss  Outcome = "PlayerLoss"
	Push        Outcome = "Push"
)

// Decide is the single outcome rule. Order matters: a bust player loses even
// when the dealer is also bust.
func Decide(player, dealer Score) Outcome {
	switch {
	case player.Bust:
		return PlayerLoss
	case dealer.Bust:
		return PlayerWin
	case player.Total > dealer.Total:
		return PlayerWin
	case player.Total == dealer.Total:
		return Push
	default:
		return PlayerLoss
	}
}

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseOpen       Phase = "open"
	PhasePlayerTurn Phase = "playerTurn"
	PhaseDealerTurn Phase = "dealerTurn"
	PhaseSettled    Phase = "settled"
)

// InProgress reports whether a session in this phase still holds escrow.
func (p Phase) InProgress() bool {
	switch p {
	case PhaseOpen, PhasePlayerTurn, PhaseDealerTurn:
		return true
	default:
		return false
	}
}
