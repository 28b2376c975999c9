package blackjack

import (
	sdkmath "cosmossdk.io/math"
)

// Params is the betting policy. Amounts are integer minor units.
type Params struct {
	RequiredBet   sdkmath.Int `json:"requiredBet"`
	WinningPayout sdkmath.Int `json:"winningPayout"`
}

func DefaultParams() Params {
	return Params{
		RequiredBet:   sdkmath.NewInt(100),
		WinningPayout: sdkmath.NewInt(200),
	}
}

func (p Params) Validate() error {
	if p.RequiredBet.IsNil() || !p.RequiredBet.IsPositive() {
		return ErrInvalidParams.Wrap("requiredBet must be positive")
	}
	if p.WinningPayout.IsNil() || !p.WinningPayout.IsPositive() {
		return ErrInvalidParams.Wrap("winningPayout must be positive")
	}
	if p.WinningPayout.LT(p.RequiredBet) {
		return ErrInvalidParams.Wrapf("winningPayout %s below requiredBet %s", p.WinningPayout, p.RequiredBet)
	}
	if !p.RequiredBet.IsUint64() || !p.WinningPayout.IsUint64() {
		return ErrInvalidParams.Wrap("amounts must fit in uint64")
	}
	return nil
}

// ReserveFloor is the balance the house must hold for a just-started game to
// be payable.
func (p Params) ReserveFloor() sdkmath.Int {
	return p.WinningPayout
}

// Payout is what the house returns to the player for an outcome.
func (p Params) Payout(o Outcome, stake sdkmath.Int) sdkmath.Int {
	switch o {
	case PlayerWin:
		return p.WinningPayout
	case Push:
		return stake
	default:
		return sdkmath.ZeroInt()
	}
}
