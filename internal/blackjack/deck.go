package blackjack

// Deck is the per-session 52-card universe. Remaining holds the undealt
// positions 0..51 in ascending order; position p has rank p%13+1.
type Deck struct {
	Remaining []byte `json:"remaining"`
}

func NewDeck() Deck {
	d := Deck{Remaining: make([]byte, DeckSize)}
	for i := range d.Remaining {
		d.Remaining[i] = byte(i)
	}
	return d
}

func (d *Deck) Len() int {
	return len(d.Remaining)
}

// Draw removes and returns the card selected by v. The same (deck, v) pair
// always yields the same card.
func (d *Deck) Draw(v uint64) (Card, error) {
	n := len(d.Remaining)
	if n == 0 {
		return 0, ErrDeckExhausted
	}
	idx := int(v % uint64(n))
	pos := d.Remaining[idx]
	if int(pos) >= DeckSize {
		return 0, ErrInvariant.Wrapf("deck position %d out of range", pos)
	}
	rest := make([]byte, 0, n-1)
	rest = append(rest, d.Remaining[:idx]...)
	rest = append(rest, d.Remaining[idx+1:]...)
	d.Remaining = rest
	return positionRank(pos), nil
}

func positionRank(pos byte) Card {
	return Card(pos%ranksPerSuit) + Ace
}
