package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/codec"
	"onchainblackjack/internal/ledger"
	"onchainblackjack/internal/state"
)

func TestFinalizeCommit_PersistsAndArchives(t *testing.T) {
	ctx := context.Background()
	db := dbm.NewMemDB()
	sink := &memSink{}
	a := newTestAppWith(t, testAppOpts{db: db, houseFunds: 1000, rng: constSource(4), sink: sink})

	pub, _ := testEd25519Key("alice")
	block1 := [][]byte{
		txBytesSigned(t, codec.TypeAuthRegisterAccount, map[string]any{"account": "alice", "pubKey": []byte(pub)}, "alice"),
		txBytesSigned(t, codec.TypeBankMint, map[string]any{"to": "alice", "amount": 100}, testOwner),
		startTx(t, "alice", "100"),
		txBytesSigned(t, codec.TypeBlackjackStand, map[string]any{"player": "alice"}, "alice"),
		[]byte("garbage"),
	}
	res, err := a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{Height: 1, Txs: block1})
	if err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if len(res.TxResults) != len(block1) {
		t.Fatalf("expected %d results, got %d", len(block1), len(res.TxResults))
	}
	for i, r := range res.TxResults[:4] {
		if r.Code != 0 {
			t.Fatalf("tx %d failed: %s", i, r.Log)
		}
	}
	if res.TxResults[4].Code == 0 {
		t.Fatalf("garbage tx accepted")
	}
	if !bytes.Equal(res.AppHash, a.st.AppHash()) {
		t.Fatalf("app hash mismatch")
	}

	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(sink.recs) != 1 || sink.recs[0].Outcome != blackjack.PlayerWin || sink.recs[0].Height != 1 {
		t.Fatalf("unexpected archived outcomes %+v", sink.recs)
	}

	// An empty block archives nothing new.
	if _, err := a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{Height: 2}); err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(sink.recs) != 1 {
		t.Fatalf("outcomes archived twice")
	}

	reopened, err := New(Options{DB: db, VRF: testVRF(t)})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	info, err := reopened.Info(ctx, &abci.InfoRequest{})
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.LastBlockHeight != 2 || !bytes.Equal(info.LastBlockAppHash, a.lastHash) {
		t.Fatalf("reopened app diverged: height=%d", info.LastBlockHeight)
	}
	if reopened.st.Balance("alice") != 200 || reopened.st.House.Owner != testOwner {
		t.Fatalf("reopened state lost data")
	}
}

func TestCommit_GoLevelDBSurvivesClose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := state.OpenDB(dir)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	a := newTestAppWith(t, testAppOpts{db: db, houseFunds: 500})
	setupPlayer(t, a, 1, "bob", 300)
	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	hash := a.lastHash
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = state.OpenDB(dir)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	reopened, err := New(Options{DB: db, VRF: testVRF(t)})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if !bytes.Equal(reopened.lastHash, hash) || reopened.st.Balance("bob") != 300 {
		t.Fatalf("state lost across close")
	}
}

// flakySink rejects writes while down is set.
type flakySink struct {
	memSink
	down bool
}

func (s *flakySink) RecordOutcomes(ctx context.Context, recs []ledger.OutcomeRecord) error {
	if s.down {
		return errors.New("disk full")
	}
	return s.memSink.RecordOutcomes(ctx, recs)
}

func TestCommit_RetriesOutcomesAfterSinkFailure(t *testing.T) {
	ctx := context.Background()
	sink := &flakySink{down: true}
	a := newTestAppWith(t, testAppOpts{houseFunds: 1000, rng: constSource(4), sink: sink})

	pub, _ := testEd25519Key("alice")
	block1 := [][]byte{
		txBytesSigned(t, codec.TypeAuthRegisterAccount, map[string]any{"account": "alice", "pubKey": []byte(pub)}, "alice"),
		txBytesSigned(t, codec.TypeBankMint, map[string]any{"to": "alice", "amount": 100}, testOwner),
		startTx(t, "alice", "100"),
		txBytesSigned(t, codec.TypeBlackjackStand, map[string]any{"player": "alice"}, "alice"),
	}
	if _, err := a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{Height: 1, Txs: block1}); err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit with failing sink must not halt the node: %v", err)
	}
	if len(sink.recs) != 0 || len(a.pending) != 1 {
		t.Fatalf("expected 1 pending record, got archived=%d pending=%d", len(sink.recs), len(a.pending))
	}

	sink.down = false
	if _, err := a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{Height: 2}); err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(sink.recs) != 1 || sink.recs[0].SessionID != 1 || sink.recs[0].Height != 1 {
		t.Fatalf("record not archived after sink recovered: %+v", sink.recs)
	}
	if len(a.pending) != 0 {
		t.Fatalf("pending not cleared: %d", len(a.pending))
	}

	if _, err := a.FinalizeBlock(ctx, &abci.FinalizeBlockRequest{Height: 3}); err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if _, err := a.Commit(ctx, &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(sink.recs) != 1 {
		t.Fatalf("record archived twice: %d", len(sink.recs))
	}
}
