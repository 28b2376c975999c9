package ledger

import (
	sdkmath "cosmossdk.io/math"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/state"
)

// Balance is the house balance: escrowed stakes plus reserve.
func (k Keeper) Balance(st *state.State) sdkmath.Int {
	return st.House.Balance
}

// FreeBalance is what remains after every open session's winning payout.
func (k Keeper) FreeBalance(st *state.State) sdkmath.Int {
	return st.House.Balance.Sub(st.Exposure())
}

// Fund moves amount from a wallet into the house balance.
func (k Keeper) Fund(st *state.State, from string, amount uint64) error {
	if from == "" {
		return blackjack.ErrInvalidRequest.Wrap("missing funder")
	}
	if amount == 0 {
		return blackjack.ErrInvalidRequest.Wrap("amount must be positive")
	}
	if err := st.Debit(from, amount); err != nil {
		return blackjack.ErrInvalidRequest.Wrapf("fund house: %v", err)
	}
	st.House.Balance = st.House.Balance.Add(sdkmath.NewIntFromUint64(amount))
	k.logger.Info("house funded", "from", from, "amount", amount, "balance", st.House.Balance.String())
	return nil
}

// Withdraw pays amount from the house to the owner's wallet. It is rejected
// when the remaining free balance would fall below the reserve floor.
func (k Keeper) Withdraw(st *state.State, caller string, amount sdkmath.Int) error {
	if caller != st.House.Owner || st.House.Owner == "" {
		return blackjack.ErrNotOwner.Wrapf("caller %s", caller)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return blackjack.ErrInvalidRequest.Wrap("amount must be positive")
	}
	if !amount.IsUint64() {
		return blackjack.ErrInvalidRequest.Wrapf("amount %s out of range", amount)
	}
	left := k.FreeBalance(st).Sub(amount)
	if left.LT(st.Params.ReserveFloor()) {
		return blackjack.ErrInsufficientReserve.Wrapf("withdraw %s leaves %s, floor %s", amount, left, st.Params.ReserveFloor())
	}
	st.House.Balance = st.House.Balance.Sub(amount)
	if err := st.Credit(caller, amount.Uint64()); err != nil {
		return blackjack.ErrInvalidRequest.Wrapf("credit owner: %v", err)
	}
	k.logger.Info("house withdrawn", "owner", caller, "amount", amount.String(), "balance", st.House.Balance.String())
	return nil
}

// CheckInvariants verifies the house can pay every in-progress session's
// winning payout and that its balance is non-negative.
func (k Keeper) CheckInvariants(st *state.State) error {
	if st.House.Balance.IsNil() || st.House.Balance.IsNegative() {
		return blackjack.ErrInvariant.Wrapf("house balance %s", st.House.Balance)
	}
	if exp := st.Exposure(); st.House.Balance.LT(exp) {
		return blackjack.ErrInvariant.Wrapf("house balance %s below exposure %s", st.House.Balance, exp)
	}
	for player, sess := range st.Sessions {
		if sess.Player != player {
			return blackjack.ErrInvariant.Wrapf("session %d stored under %s", sess.ID, player)
		}
		if sess.Phase == blackjack.PhaseSettled && sess.Payout.GT(st.Params.WinningPayout) {
			return blackjack.ErrInvariant.Wrapf("session %d paid %s", sess.ID, sess.Payout)
		}
	}
	return nil
}
