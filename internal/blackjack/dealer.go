package blackjack

// DealerPhase is the dealer policy state.
type DealerPhase string

const (
	DealerDrawing  DealerPhase = "drawing"
	DealerStanding DealerPhase = "standing"
)

// MaxDealerDraws bounds the dealer's draws after the two opening cards.
const MaxDealerDraws = 11

// StandThreshold maps a random value onto [MinDealerStand, MinDealerStand+DealerStandRange).
func StandThreshold(v uint64) int {
	return int(v%DealerStandRange) + MinDealerStand
}

// DealerPolicy plays the house hand. The threshold is fixed when the policy is
// created at the start of the dealer's turn and never changes afterwards.
type DealerPolicy struct {
	Threshold int         `json:"threshold"`
	Phase     DealerPhase `json:"phase"`
	Draws     int         `json:"draws"`
}

func NewDealerPolicy(v uint64) *DealerPolicy {
	return &DealerPolicy{
		Threshold: StandThreshold(v),
		Phase:     DealerDrawing,
	}
}

// Step reports whether the dealer must draw another card for hand, moving the
// policy to DealerStanding once it is bust or at or above the threshold.
func (p *DealerPolicy) Step(hand []Card) bool {
	if p.Phase == DealerStanding {
		return false
	}
	s := Evaluate(hand)
	if s.Bust || s.Total >= p.Threshold {
		p.Phase = DealerStanding
		return false
	}
	return true
}

// Play drives the policy to DealerStanding, drawing cards with draw.
func (p *DealerPolicy) Play(hand []Card, draw func() (Card, error)) ([]Card, error) {
	for p.Step(hand) {
		if p.Draws >= MaxDealerDraws {
			return hand, ErrInvariant.Wrapf("dealer exceeded %d draws", MaxDealerDraws)
		}
		c, err := draw()
		if err != nil {
			return hand, err
		}
		hand = append(hand, c)
		p.Draws++
	}
	return hand, nil
}
