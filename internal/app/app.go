package app

import (
	"context"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/codec"
	"onchainblackjack/internal/fairness"
	"onchainblackjack/internal/ledger"
	"onchainblackjack/internal/state"
)

const (
	AppVersion uint64 = 1
)

// OutcomeSink receives settled outcome records after each commit.
type OutcomeSink interface {
	RecordOutcomes(ctx context.Context, recs []ledger.OutcomeRecord) error
}

type Options struct {
	// DB backs the state store. Required.
	DB dbm.DB
	// VRF draws cards and serves fairness proofs.
	VRF *fairness.VRF
	// Randomness overrides VRF as the draw source; proofs are then unavailable.
	Randomness blackjack.Randomness
	// Genesis is used when InitChain carries no app state.
	Genesis GenesisState
	Sink    OutcomeSink
	Logger  log.Logger
}

type BJApp struct {
	*abci.BaseApplication

	store  *state.Store
	keeper ledger.Keeper
	vrf    *fairness.VRF
	sink   OutcomeSink
	logger log.Logger

	genesis GenesisState

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
	// settled in the current block, handed to sink on Commit
	pending []ledger.OutcomeRecord
}

func New(opts Options) (*BJApp, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("app: db is nil")
	}
	rng := opts.Randomness
	if rng == nil {
		if opts.VRF == nil {
			return nil, fmt.Errorf("app: no randomness source configured")
		}
		rng = opts.VRF
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	store := state.NewStore(opts.DB)
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	a := &BJApp{
		BaseApplication: abci.NewBaseApplication(),
		store:           store,
		keeper:          ledger.NewKeeper(rng, logger),
		vrf:             opts.VRF,
		sink:            opts.Sink,
		logger:          logger.With("module", "app"),
		genesis:         opts.Genesis,
		st:              st,
		lastHash:        st.AppHash(),
	}
	return a, nil
}

func (a *BJApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "blackjack",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

func (a *BJApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		err = ErrInvalidTx.Wrap(err.Error())
	} else if !knownTxType(env.Type) {
		err = ErrUnknownTx.Wrap(env.Type)
	}
	if err != nil {
		space, code, msg := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Code: code, Codespace: space, Log: msg}, nil
	}
	// Signatures and nonces are checked at delivery against block state.
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *BJApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	g, err := decodeGenesis(req.AppStateBytes, a.genesis)
	if err != nil {
		return nil, err
	}
	staged, err := a.st.Clone()
	if err != nil {
		return nil, err
	}
	if err := applyGenesis(staged, g); err != nil {
		return nil, err
	}
	if err := a.keeper.CheckInvariants(staged); err != nil {
		return nil, err
	}
	a.st = staged
	a.lastHash = a.st.AppHash()
	a.logger.Info("genesis applied", "owner", g.Owner, "house_balance", a.st.House.Balance.String())
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *BJApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height)
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *BJApp) Commit(ctx context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(a.st); err != nil {
		// Returning the error halts the node rather than diverging from the app hash.
		return nil, err
	}
	if a.sink == nil {
		a.pending = nil
		return &abci.CommitResponse{}, nil
	}
	// Records stay pending until the sink accepts them; the sink ignores
	// sessions it already holds, so a retry is safe.
	if len(a.pending) > 0 {
		if err := a.sink.RecordOutcomes(ctx, a.pending); err != nil {
			a.logger.Error("archive outcomes", "height", a.st.Height, "count", len(a.pending), "err", err)
			return &abci.CommitResponse{}, nil
		}
	}
	a.pending = nil
	return &abci.CommitResponse{}, nil
}

// Close releases the state database.
func (a *BJApp) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Close()
}

// deliverTx runs one tx against a clone of state and keeps the clone only if
// the tx and the ledger invariants both pass.
func (a *BJApp) deliverTx(txBytes []byte, height int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return a.errResult(ErrInvalidTx.Wrap(err.Error()))
	}

	staged, err := a.st.Clone()
	if err != nil {
		return a.errResult(err)
	}
	staged.Height = height

	res, settled, err := a.execTx(staged, env)
	if err != nil {
		a.logger.Debug("tx rejected", "type", env.Type, "signer", env.Signer, "err", err)
		return a.errResult(err)
	}
	if err := a.keeper.CheckInvariants(staged); err != nil {
		a.logger.Error("tx broke ledger invariant", "type", env.Type, "err", err)
		return a.errResult(err)
	}

	a.st = staged
	a.pending = append(a.pending, settled...)
	return res
}

func (a *BJApp) errResult(err error) *abci.ExecTxResult {
	space, code, msg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: space, Log: msg}
}
