package ledger

import (
	"cosmossdk.io/log"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/state"
)

// Keeper is the game ledger. It owns every transition of sessions and of the
// house balance. Methods mutate the given state in place and may leave it
// partially updated on error; callers execute against a clone and keep it
// only on success.
type Keeper struct {
	rng    blackjack.Randomness
	logger log.Logger
}

func NewKeeper(rng blackjack.Randomness, logger log.Logger) Keeper {
	if rng == nil {
		panic("ledger keeper: randomness is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Keeper{
		rng:    rng,
		logger: logger.With("module", "x/"+blackjack.ModuleName),
	}
}

// draw reads the session's next random value and deals one card from its
// deck. The nonce advances only on a successful read.
func (k Keeper) draw(sess *state.Session) (blackjack.Card, error) {
	v, err := k.nextValue(sess)
	if err != nil {
		return 0, err
	}
	return sess.Deck.Draw(v)
}

func (k Keeper) nextValue(sess *state.Session) (uint64, error) {
	v, err := k.rng.NextValue(sess.ID, sess.Nonce)
	if err != nil {
		return 0, blackjack.ErrRandomness.Wrapf("session %d nonce %d: %v", sess.ID, sess.Nonce, err)
	}
	sess.Nonce++
	return v, nil
}
