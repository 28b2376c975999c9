package blackjack

import (
	"fmt"
	"strconv"
)

const (
	BlackjackValue   = 21
	FaceCardValue    = 10
	MinDealerStand   = 17
	DealerStandRange = 5

	// DeckSize is the single-deck universe a session draws from.
	DeckSize = 52

	aceHighValue = 11
	ranksPerSuit = 13
)

// Card is a rank 1..13 (ace..king). Suits never affect blackjack value so they
// are not carried.
type Card uint8

const (
	Ace   Card = 1
	Jack  Card = 11
	Queen Card = 12
	King  Card = 13
)

func (c Card) Valid() bool {
	return c >= Ace && c <= King
}

// Value is the hard value of the card: aces count 1, J/Q/K count 10.
func (c Card) Value() int {
	switch {
	case c >= 10:
		return FaceCardValue
	default:
		return int(c)
	}
}

func (c Card) String() string {
	switch c {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if c.Valid() {
		return strconv.Itoa(int(c))
	}
	return "?"
}

// MarshalJSON keeps hands readable as rank arrays instead of base64 bytes.
func (c Card) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(c), 10), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseUint(string(b), 10, 8)
	if err != nil {
		return fmt.Errorf("card: %w", err)
	}
	if !Card(n).Valid() {
		return fmt.Errorf("card: rank %d out of range", n)
	}
	*c = Card(n)
	return nil
}

// FormatHand renders a hand as "A,10,5" for events and logs.
func FormatHand(cards []Card) string {
	b := make([]byte, 0, len(cards)*3)
	for i, c := range cards {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, c.String()...)
	}
	return string(b)
}
