package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"

	"onchainblackjack/internal/blackjack"
)

type State struct {
	Height int64 `json:"height"`

	NextSessionID uint64           `json:"nextSessionId"`
	Params        blackjack.Params `json:"params"`
	House         House            `json:"house"`

	Accounts    map[string]uint64   `json:"accounts"`
	AccountKeys map[string][]byte   `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax    map[string]uint64   `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce
	Sessions    map[string]*Session `json:"sessions"`              // player -> latest session
}

// House is the ledger account holding escrowed stakes and the payout reserve.
// Owner is set once at genesis.
type House struct {
	Owner   string      `json:"owner"`
	Balance sdkmath.Int `json:"balance"`
}

// Session is one player's game. A settled session stays in state until the
// player starts the next one.
type Session struct {
	ID     uint64          `json:"id"`
	Player string          `json:"player"`
	Stake  sdkmath.Int     `json:"stake"`
	Phase  blackjack.Phase `json:"phase"`

	PlayerHand []blackjack.Card `json:"playerHand"`
	DealerHand []blackjack.Card `json:"dealerHand"`

	Deck blackjack.Deck `json:"deck"`
	// Nonce counts randomness reads consumed by this session.
	Nonce  uint64                  `json:"nonce"`
	Dealer *blackjack.DealerPolicy `json:"dealer,omitempty"`

	Outcome blackjack.Outcome `json:"outcome,omitempty"`
	Payout  sdkmath.Int       `json:"payout"`

	StartHeight  int64 `json:"startHeight"`
	SettleHeight int64 `json:"settleHeight,omitempty"`
}

func NewState() *State {
	st := &State{Params: blackjack.DefaultParams()}
	st.normalize()
	return st
}

func (s *State) normalize() {
	if s.NextSessionID == 0 {
		s.NextSessionID = 1
	}
	if s.Params.RequiredBet.IsNil() || s.Params.WinningPayout.IsNil() {
		s.Params = blackjack.DefaultParams()
	}
	if s.House.Balance.IsNil() {
		s.House.Balance = sdkmath.ZeroInt()
	}
	if s.Accounts == nil {
		s.Accounts = map[string]uint64{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Sessions == nil {
		s.Sessions = map[string]*Session{}
	}
	for _, sess := range s.Sessions {
		if sess.Stake.IsNil() {
			sess.Stake = sdkmath.ZeroInt()
		}
		if sess.Payout.IsNil() {
			sess.Payout = sdkmath.ZeroInt()
		}
	}
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

func (s *State) AppHash() []byte {
	// encoding/json sorts map keys, but the normalized view keeps the hash
	// independent of the in-memory layout.
	type accountKV struct {
		Addr    string `json:"addr"`
		Balance uint64 `json:"balance"`
	}
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}

	accounts := make([]accountKV, 0, len(s.Accounts))
	for k, v := range s.Accounts {
		accounts = append(accounts, accountKV{Addr: k, Balance: v})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	normalized := struct {
		Height        int64            `json:"height"`
		NextSessionID uint64           `json:"nextSessionId"`
		Params        blackjack.Params `json:"params"`
		House         House            `json:"house"`
		Accounts      []accountKV      `json:"accounts"`
		AccountKeys   []accountKeyKV   `json:"accountKeys,omitempty"`
		NonceMax      []nonceKV        `json:"nonceMax,omitempty"`
		Sessions      []*Session       `json:"sessions"`
	}{
		Height:        s.Height,
		NextSessionID: s.NextSessionID,
		Params:        s.Params,
		House:         s.House,
		Accounts:      accounts,
		AccountKeys:   accountKeys,
		NonceMax:      nonces,
		Sessions:      s.SortedSessions(),
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}

// ---- Bank ----

func (s *State) Balance(addr string) uint64 {
	return s.Accounts[addr]
}

func (s *State) Credit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal > ^uint64(0)-amount {
		return fmt.Errorf("balance overflow: have=%d add=%d", bal, amount)
	}
	s.Accounts[addr] = bal + amount
	return nil
}

func (s *State) Debit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal < amount {
		return fmt.Errorf("insufficient funds: have=%d need=%d", bal, amount)
	}
	s.Accounts[addr] = bal - amount
	return nil
}

// ---- Sessions ----

// ActiveSession returns the player's session if it is still in progress.
func (s *State) ActiveSession(player string) (*Session, bool) {
	sess, ok := s.Sessions[player]
	if !ok || !sess.Phase.InProgress() {
		return nil, false
	}
	return sess, true
}

// OpenSessions counts sessions that still hold escrow.
func (s *State) OpenSessions() int {
	n := 0
	for _, sess := range s.Sessions {
		if sess.Phase.InProgress() {
			n++
		}
	}
	return n
}

// Exposure is the amount the house may still owe: one winning payout per
// in-progress session.
func (s *State) Exposure() sdkmath.Int {
	return s.Params.WinningPayout.MulRaw(int64(s.OpenSessions()))
}

// SortedSessions returns sessions ordered by ID.
func (s *State) SortedSessions() []*Session {
	out := make([]*Session, 0, len(s.Sessions))
	for _, sess := range s.Sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
