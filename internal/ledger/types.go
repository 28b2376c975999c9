package ledger

import (
	sdkmath "cosmossdk.io/math"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/state"
)

// HandState is the player's view after a hit.
type HandState struct {
	SessionID  uint64           `json:"sessionId"`
	Player     string           `json:"player"`
	Phase      blackjack.Phase  `json:"phase"`
	PlayerHand []blackjack.Card `json:"playerHand"`
	Score      blackjack.Score  `json:"score"`
	// Settled is set when the hit ended the game.
	Settled *OutcomeRecord `json:"settled,omitempty"`
}

// OutcomeRecord is emitted once per settled session.
type OutcomeRecord struct {
	SessionID       uint64            `json:"sessionId"`
	Player          string            `json:"player"`
	Outcome         blackjack.Outcome `json:"outcome"`
	PlayerHand      []blackjack.Card  `json:"playerHand"`
	DealerHand      []blackjack.Card  `json:"dealerHand"`
	PlayerTotal     int               `json:"playerTotal"`
	DealerTotal     int               `json:"dealerTotal"`
	DealerThreshold int               `json:"dealerThreshold,omitempty"`
	Stake           sdkmath.Int       `json:"stake"`
	Payout          sdkmath.Int       `json:"payout"`
	Height          int64             `json:"height"`
}

func recordFor(sess *state.Session) OutcomeRecord {
	r := OutcomeRecord{
		SessionID:   sess.ID,
		Player:      sess.Player,
		Outcome:     sess.Outcome,
		PlayerHand:  append([]blackjack.Card(nil), sess.PlayerHand...),
		DealerHand:  append([]blackjack.Card(nil), sess.DealerHand...),
		PlayerTotal: blackjack.Evaluate(sess.PlayerHand).Total,
		DealerTotal: blackjack.Evaluate(sess.DealerHand).Total,
		Stake:       sess.Stake,
		Payout:      sess.Payout,
		Height:      sess.SettleHeight,
	}
	if sess.Dealer != nil {
		r.DealerThreshold = sess.Dealer.Threshold
	}
	return r
}

func handState(sess *state.Session) HandState {
	return HandState{
		SessionID:  sess.ID,
		Player:     sess.Player,
		Phase:      sess.Phase,
		PlayerHand: append([]blackjack.Card(nil), sess.PlayerHand...),
		Score:      blackjack.Evaluate(sess.PlayerHand),
	}
}
