package codec

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Tx types routed by the app.
const (
	TypeBankMint            = "bank/mint"
	TypeBankSend            = "bank/send"
	TypeAuthRegisterAccount = "auth/register_account"
	TypeHouseFund           = "house/fund"
	TypeHouseWithdraw       = "house/withdraw"
	TypeBlackjackStart      = "blackjack/start"
	TypeBlackjackHit        = "blackjack/hit"
	TypeBlackjackStand      = "blackjack/stand"
)

// TxEnvelope is the transaction container. CometBFT txs are opaque bytes;
// this app uses JSON.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Nonce must increase per signer. Sig is an Ed25519 signature over
	// (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// ---- Bank ----

// BankMintTx credits a wallet. Only the house owner may mint.
type BankMintTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ---- Auth ----

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- House ----

type HouseFundTx struct {
	From   string `json:"from"`
	Amount uint64 `json:"amount"`
}

type HouseWithdrawTx struct {
	Owner  string      `json:"owner"`
	Amount sdkmath.Int `json:"amount"`
}

// ---- Blackjack ----

// BlackjackStartTx opens a session. Value is the attested stake and must equal
// the configured required bet.
type BlackjackStartTx struct {
	Player string      `json:"player"`
	Value  sdkmath.Int `json:"value"`
}

// SessionID 0 means the player's current session.
type BlackjackHitTx struct {
	Player    string `json:"player"`
	SessionID uint64 `json:"sessionId,omitempty"`
}

type BlackjackStandTx struct {
	Player    string `json:"player"`
	SessionID uint64 `json:"sessionId,omitempty"`
}
