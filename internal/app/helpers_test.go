package app

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/codec"
	"onchainblackjack/internal/fairness"
	"onchainblackjack/internal/ledger"
)

const testOwner = "house"

var testNonce atomic.Uint64

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func txBytes(t *testing.T, typ string, value any) []byte {
	t.Helper()
	return mustMarshal(t, map[string]any{
		"type":  typ,
		"value": value,
	})
}

func testEd25519Key(id string) (ed25519.PublicKey, ed25519.PrivateKey) {
	seed := sha256.Sum256([]byte("bj-test-key|" + id))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), priv
}

func txBytesSigned(t *testing.T, typ string, value any, signer string) []byte {
	t.Helper()
	_, priv := testEd25519Key(signer)
	env := codec.TxEnvelope{Type: typ, Value: mustMarshal(t, value)}
	SignTx(&env, signer, testNonce.Add(1), priv)
	return mustMarshal(t, env)
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func parseU64(t *testing.T, s string) uint64 {
	t.Helper()
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		t.Fatalf("parse uint64 %q: %v", s, err)
	}
	return n
}

func mustOk(t *testing.T, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	if res.Code != 0 {
		t.Fatalf("expected ok, got code=%d codespace=%q log=%q", res.Code, res.Codespace, res.Log)
	}
	return res
}

func mustFail(t *testing.T, res *abci.ExecTxResult, space string, code uint32) *abci.ExecTxResult {
	t.Helper()
	if res.Code != code || res.Codespace != space {
		t.Fatalf("expected %s/%d, got code=%d codespace=%q log=%q", space, code, res.Code, res.Codespace, res.Log)
	}
	return res
}

func testVRF(t *testing.T) *fairness.VRF {
	t.Helper()
	v, err := fairness.NewVRF(bytes.Repeat([]byte{0x42}, fairness.SecretBytes))
	if err != nil {
		t.Fatalf("NewVRF: %v", err)
	}
	return v
}

func testGenesis(houseBalance int64) GenesisState {
	pub, _ := testEd25519Key(testOwner)
	return GenesisState{
		Owner:        testOwner,
		OwnerPubKey:  pub,
		HouseBalance: sdkmath.NewInt(houseBalance),
	}
}

type testAppOpts struct {
	db         dbm.DB
	houseFunds int64
	rng        blackjack.Randomness
	sink       OutcomeSink
}

func newTestAppWith(t *testing.T, o testAppOpts) *BJApp {
	t.Helper()
	if o.db == nil {
		o.db = dbm.NewMemDB()
	}
	a, err := New(Options{
		DB:         o.db,
		VRF:        testVRF(t),
		Randomness: o.rng,
		Genesis:    testGenesis(o.houseFunds),
		Sink:       o.sink,
		Logger:     log.NewTestLogger(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.InitChain(context.Background(), &abci.InitChainRequest{}); err != nil {
		t.Fatalf("InitChain: %v", err)
	}
	return a
}

func newTestApp(t *testing.T) *BJApp {
	return newTestAppWith(t, testAppOpts{houseFunds: 1000})
}

func mintTestTokens(t *testing.T, a *BJApp, height int64, to string, amount uint64) {
	t.Helper()
	mustOk(t, a.deliverTx(txBytesSigned(t, codec.TypeBankMint, map[string]any{"to": to, "amount": amount}, testOwner), height))
}

func registerTestAccount(t *testing.T, a *BJApp, height int64, id string) {
	t.Helper()
	pub, _ := testEd25519Key(id)
	mustOk(t, a.deliverTx(txBytesSigned(t, codec.TypeAuthRegisterAccount, map[string]any{
		"account": id,
		"pubKey":  []byte(pub),
	}, id), height))
}

func setupPlayer(t *testing.T, a *BJApp, height int64, id string, amount uint64) {
	t.Helper()
	registerTestAccount(t, a, height, id)
	mintTestTokens(t, a, height, id, amount)
}

func startTx(t *testing.T, player string, value string) []byte {
	t.Helper()
	return txBytesSigned(t, codec.TypeBlackjackStart, map[string]any{"player": player, "value": value}, player)
}

func query(t *testing.T, a *BJApp, path string, out any) *abci.QueryResponse {
	t.Helper()
	res, err := a.Query(context.Background(), &abci.QueryRequest{Path: path})
	if err != nil {
		t.Fatalf("Query %s: %v", path, err)
	}
	if res.Code == 0 && out != nil {
		if err := json.Unmarshal(res.Value, out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return res
}

// constSource returns the same value for every draw.
type constSource uint64

func (c constSource) NextValue(uint64, uint64) (uint64, error) {
	return uint64(c), nil
}

type memSink struct {
	mu   sync.Mutex
	recs []ledger.OutcomeRecord
}

func (s *memSink) RecordOutcomes(_ context.Context, recs []ledger.OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, recs...)
	return nil
}

func signRaw(priv ed25519.PrivateKey, env codec.TxEnvelope) []byte {
	return ed25519.Sign(priv, txAuthSignBytes(env.Type, env.Value, env.Nonce, env.Signer))
}
