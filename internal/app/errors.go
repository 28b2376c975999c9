package app

import errorsmod "cosmossdk.io/errors"

const codespace = "bjapp"

var (
	ErrInvalidTx    = errorsmod.Register(codespace, 2, "invalid tx")
	ErrUnauthorized = errorsmod.Register(codespace, 3, "unauthorized")
	ErrUnknownTx    = errorsmod.Register(codespace, 4, "unknown tx type")
	ErrGenesis      = errorsmod.Register(codespace, 5, "invalid genesis")
	ErrQuery        = errorsmod.Register(codespace, 6, "invalid query")
)
