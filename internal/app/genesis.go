package app

import (
	"crypto/ed25519"
	"encoding/json"

	sdkmath "cosmossdk.io/math"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/state"
)

// GenesisState is read from InitChain app state bytes. When the chain starts
// with empty app state the configured default is used instead.
type GenesisState struct {
	Owner        string            `json:"owner"`
	OwnerPubKey  []byte            `json:"ownerPubKey,omitempty"`
	Params       *blackjack.Params `json:"params,omitempty"`
	HouseBalance sdkmath.Int       `json:"houseBalance"`
	Accounts     map[string]uint64 `json:"accounts,omitempty"`
}

func (g GenesisState) Validate() error {
	if g.Owner == "" {
		return ErrGenesis.Wrap("missing owner")
	}
	if len(g.OwnerPubKey) != 0 && len(g.OwnerPubKey) != ed25519.PublicKeySize {
		return ErrGenesis.Wrapf("ownerPubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if g.Params != nil {
		if err := g.Params.Validate(); err != nil {
			return err
		}
	}
	if !g.HouseBalance.IsNil() && g.HouseBalance.IsNegative() {
		return ErrGenesis.Wrap("negative house balance")
	}
	return nil
}

func decodeGenesis(bz []byte, fallback GenesisState) (GenesisState, error) {
	if len(bz) == 0 || string(bz) == "{}" || string(bz) == "null" {
		return fallback, fallback.Validate()
	}
	var g GenesisState
	if err := json.Unmarshal(bz, &g); err != nil {
		return GenesisState{}, ErrGenesis.Wrapf("decode app state: %v", err)
	}
	return g, g.Validate()
}

// applyGenesis sets the house owner. It runs once per chain; an already owned
// house is never reassigned.
func applyGenesis(st *state.State, g GenesisState) error {
	if st.House.Owner != "" {
		return ErrGenesis.Wrapf("house already owned by %s", st.House.Owner)
	}
	st.House.Owner = g.Owner
	if len(g.OwnerPubKey) != 0 {
		st.AccountKeys[g.Owner] = append([]byte(nil), g.OwnerPubKey...)
	}
	if g.Params != nil {
		st.Params = *g.Params
	}
	if !g.HouseBalance.IsNil() {
		st.House.Balance = g.HouseBalance
	}
	for addr, amt := range g.Accounts {
		if err := st.Credit(addr, amt); err != nil {
			return ErrGenesis.Wrapf("account %s: %v", addr, err)
		}
	}
	return nil
}
