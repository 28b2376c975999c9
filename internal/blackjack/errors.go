package blackjack

import errorsmod "cosmossdk.io/errors"

// ModuleName is the error codespace and event/log module name.
const ModuleName = "blackjack"

// blackjack sentinel errors.
var (
	ErrInvalidRequest      = errorsmod.Register(ModuleName, 1, "invalid request")
	ErrInsufficientBet     = errorsmod.Register(ModuleName, 2, "insufficient bet")
	ErrSessionAlreadyOpen  = errorsmod.Register(ModuleName, 3, "session already open")
	ErrInsolventHouse      = errorsmod.Register(ModuleName, 4, "house cannot guarantee payout")
	ErrNoActiveSession     = errorsmod.Register(ModuleName, 5, "no active session")
	ErrDeckExhausted       = errorsmod.Register(ModuleName, 6, "deck exhausted")
	ErrNotOwner            = errorsmod.Register(ModuleName, 7, "caller is not the owner")
	ErrInsufficientReserve = errorsmod.Register(ModuleName, 8, "insufficient reserve")
	ErrInvalidParams       = errorsmod.Register(ModuleName, 9, "invalid params")
	ErrRandomness          = errorsmod.Register(ModuleName, 10, "randomness unavailable")
	ErrInvariant           = errorsmod.Register(ModuleName, 11, "ledger invariant violated")
)
