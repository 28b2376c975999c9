package blackjack

// Randomness supplies draw entropy. A value must depend only on the session,
// the per-session nonce and a secret the player cannot see, so the caller has
// no way to advance or re-roll it. The ledger owns the nonce.
type Randomness interface {
	NextValue(sessionID, nonce uint64) (uint64, error)
}
