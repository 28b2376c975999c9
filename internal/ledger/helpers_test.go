package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"testing"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/state"
)

const owner = "house-owner"

// script lays out the raw values a session will read, computed against a
// shadow deck so each value deals the intended card.
type script struct {
	t      *testing.T
	deck   blackjack.Deck
	values []uint64
}

func newScript(t *testing.T) *script {
	return &script{t: t, deck: blackjack.NewDeck()}
}

func (s *script) cards(cs ...blackjack.Card) *script {
	s.t.Helper()
	for _, c := range cs {
		v, ok := indexOf(s.deck, c)
		require.True(s.t, ok, "no %s left in shadow deck", c)
		_, err := s.deck.Draw(v)
		require.NoError(s.t, err)
		s.values = append(s.values, v)
	}
	return s
}

func (s *script) threshold(th int) *script {
	s.values = append(s.values, uint64(th-blackjack.MinDealerStand))
	return s
}

// indexOf finds the draw value that deals rank c from d, trying each slot
// on a copy.
func indexOf(d blackjack.Deck, c blackjack.Card) (uint64, bool) {
	for i := range d.Remaining {
		probe := blackjack.Deck{Remaining: append([]byte(nil), d.Remaining...)}
		got, err := probe.Draw(uint64(i))
		if err == nil && got == c {
			return uint64(i), true
		}
	}
	return 0, false
}

// hashSource derives values as sha256(seed || sessionID || nonce).
type hashSource []byte

func (s hashSource) NextValue(sessionID, nonce uint64) (uint64, error) {
	buf := make([]byte, len(s)+16)
	copy(buf, s)
	binary.LittleEndian.PutUint64(buf[len(s):], sessionID)
	binary.LittleEndian.PutUint64(buf[len(s)+8:], nonce)
	h := sha256.Sum256(buf)
	return binary.LittleEndian.Uint64(h[:8]), nil
}

// rigged serves scripts by session ID.
type rigged map[uint64]*script

func (r rigged) NextValue(sessionID, nonce uint64) (uint64, error) {
	s, ok := r[sessionID]
	if !ok {
		return 0, fmt.Errorf("no script for session %d", sessionID)
	}
	if nonce >= uint64(len(s.values)) {
		return 0, fmt.Errorf("session %d script exhausted at nonce %d", sessionID, nonce)
	}
	return s.values[nonce], nil
}

func newTestState(houseBalance int64, wallets map[string]uint64) *state.State {
	st := state.NewState()
	st.Height = 1
	st.House = state.House{Owner: owner, Balance: sdkmath.NewInt(houseBalance)}
	for addr, amt := range wallets {
		st.Accounts[addr] = amt
	}
	return st
}

func newTestKeeper(t *testing.T, rng blackjack.Randomness) Keeper {
	return NewKeeper(rng, log.NewTestLogger(t))
}

func requireInt(t *testing.T, want int64, got sdkmath.Int) {
	t.Helper()
	require.Equal(t, sdkmath.NewInt(want).String(), got.String())
}

func bet(st *state.State) sdkmath.Int {
	return st.Params.RequiredBet
}
