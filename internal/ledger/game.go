package ledger

import (
	sdkmath "cosmossdk.io/math"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/state"
)

// StartGame escrows value from the player's wallet into the house and deals
// the player's two opening cards.
func (k Keeper) StartGame(st *state.State, player string, value sdkmath.Int) (uint64, error) {
	if player == "" {
		return 0, blackjack.ErrInvalidRequest.Wrap("missing player")
	}
	if value.IsNil() || !value.Equal(st.Params.RequiredBet) {
		return 0, blackjack.ErrInsufficientBet.Wrapf("got %s, want %s", value, st.Params.RequiredBet)
	}
	if sess, ok := st.ActiveSession(player); ok {
		return 0, blackjack.ErrSessionAlreadyOpen.Wrapf("player %s has session %d in phase %s", player, sess.ID, sess.Phase)
	}

	// Reserve check happens before any card is dealt.
	free := st.House.Balance.Sub(st.Exposure())
	if free.LT(st.Params.ReserveFloor()) {
		return 0, blackjack.ErrInsolventHouse.Wrapf("free balance %s below reserve floor %s", free, st.Params.ReserveFloor())
	}

	stake := st.Params.RequiredBet
	if err := st.Debit(player, stake.Uint64()); err != nil {
		return 0, blackjack.ErrInvalidRequest.Wrapf("escrow stake: %v", err)
	}
	st.House.Balance = st.House.Balance.Add(stake)

	sess := &state.Session{
		ID:          st.NextSessionID,
		Player:      player,
		Stake:       stake,
		Phase:       blackjack.PhaseOpen,
		Deck:        blackjack.NewDeck(),
		Payout:      sdkmath.ZeroInt(),
		StartHeight: st.Height,
	}
	st.NextSessionID++
	st.Sessions[player] = sess

	for i := 0; i < 2; i++ {
		c, err := k.draw(sess)
		if err != nil {
			return 0, err
		}
		sess.PlayerHand = append(sess.PlayerHand, c)
	}
	sess.Phase = blackjack.PhasePlayerTurn

	k.logger.Debug("game started", "session", sess.ID, "player", player, "hand", blackjack.FormatHand(sess.PlayerHand))
	return sess.ID, nil
}

// Hit deals one card to the player. A bust settles the session at once and
// the dealer never draws.
func (k Keeper) Hit(st *state.State, player string, sessionID uint64) (HandState, error) {
	sess, err := playerTurnSession(st, player, sessionID)
	if err != nil {
		return HandState{}, err
	}
	c, err := k.draw(sess)
	if err != nil {
		return HandState{}, err
	}
	sess.PlayerHand = append(sess.PlayerHand, c)

	if !blackjack.Evaluate(sess.PlayerHand).Bust {
		return handState(sess), nil
	}
	rec, err := k.settle(st, sess)
	if err != nil {
		return HandState{}, err
	}
	hs := handState(sess)
	hs.Settled = &rec
	return hs, nil
}

// Stand ends the player's turn, plays the dealer to completion and settles.
// The stand threshold is read once, before the dealer's opening cards.
func (k Keeper) Stand(st *state.State, player string, sessionID uint64) (OutcomeRecord, error) {
	sess, err := playerTurnSession(st, player, sessionID)
	if err != nil {
		return OutcomeRecord{}, err
	}
	sess.Phase = blackjack.PhaseDealerTurn

	v, err := k.nextValue(sess)
	if err != nil {
		return OutcomeRecord{}, err
	}
	sess.Dealer = blackjack.NewDealerPolicy(v)

	for i := 0; i < 2; i++ {
		c, err := k.draw(sess)
		if err != nil {
			return OutcomeRecord{}, err
		}
		sess.DealerHand = append(sess.DealerHand, c)
	}
	hand, err := sess.Dealer.Play(sess.DealerHand, func() (blackjack.Card, error) { return k.draw(sess) })
	if err != nil {
		return OutcomeRecord{}, err
	}
	sess.DealerHand = hand

	return k.settle(st, sess)
}

// settle applies the outcome rule and moves funds. The house balance can
// never go negative; a payout the house cannot cover fails the whole call.
func (k Keeper) settle(st *state.State, sess *state.Session) (OutcomeRecord, error) {
	outcome := blackjack.Decide(blackjack.Evaluate(sess.PlayerHand), blackjack.Evaluate(sess.DealerHand))
	payout := st.Params.Payout(outcome, sess.Stake)

	if st.House.Balance.LT(payout) {
		return OutcomeRecord{}, blackjack.ErrInvariant.Wrapf("payout %s exceeds house balance %s", payout, st.House.Balance)
	}
	st.House.Balance = st.House.Balance.Sub(payout)
	if st.House.Balance.IsNegative() {
		return OutcomeRecord{}, blackjack.ErrInvariant.Wrap("negative house balance")
	}
	if payout.IsPositive() {
		if !payout.IsUint64() {
			return OutcomeRecord{}, blackjack.ErrInvariant.Wrapf("payout %s out of range", payout)
		}
		if err := st.Credit(sess.Player, payout.Uint64()); err != nil {
			return OutcomeRecord{}, blackjack.ErrInvariant.Wrapf("credit payout: %v", err)
		}
	}

	sess.Outcome = outcome
	sess.Payout = payout
	sess.Phase = blackjack.PhaseSettled
	sess.SettleHeight = st.Height

	rec := recordFor(sess)
	k.logger.Info("game settled",
		"session", rec.SessionID,
		"player", rec.Player,
		"outcome", rec.Outcome,
		"player_hand", blackjack.FormatHand(rec.PlayerHand),
		"dealer_hand", blackjack.FormatHand(rec.DealerHand),
		"payout", rec.Payout.String(),
	)
	return rec, nil
}

func playerTurnSession(st *state.State, player string, sessionID uint64) (*state.Session, error) {
	sess, ok := st.ActiveSession(player)
	if !ok {
		return nil, blackjack.ErrNoActiveSession.Wrapf("player %s", player)
	}
	if sessionID != 0 && sess.ID != sessionID {
		return nil, blackjack.ErrNoActiveSession.Wrapf("session %d is not active for %s", sessionID, player)
	}
	if sess.Phase != blackjack.PhasePlayerTurn {
		return nil, blackjack.ErrNoActiveSession.Wrapf("session %d in phase %s", sess.ID, sess.Phase)
	}
	return sess, nil
}
