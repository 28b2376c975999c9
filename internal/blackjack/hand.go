package blackjack

// Score is the evaluated value of a hand.
type Score struct {
	Total int `json:"total"`
	// Soft reports an ace still counted as 11.
	Soft      bool `json:"soft,omitempty"`
	Bust      bool `json:"bust,omitempty"`
	Blackjack bool `json:"blackjack,omitempty"`
}

// Evaluate scores a hand. Every ace starts at 11 and is demoted to 1, one at a
// time, while the total exceeds 21.
func Evaluate(cards []Card) Score {
	total := 0
	highAces := 0
	for _, c := range cards {
		if c == Ace {
			total += aceHighValue
			highAces++
			continue
		}
		total += c.Value()
	}
	for total > BlackjackValue && highAces > 0 {
		total -= aceHighValue - 1
		highAces--
	}
	return Score{
		Total:     total,
		Soft:      highAces > 0,
		Bust:      total > BlackjackValue,
		Blackjack: len(cards) == 2 && total == BlackjackValue,
	}
}
