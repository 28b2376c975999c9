package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/fairness"
)

// HouseView is the /house query response.
type HouseView struct {
	Owner        string      `json:"owner"`
	Balance      sdkmath.Int `json:"balance"`
	Exposure     sdkmath.Int `json:"exposure"`
	FreeBalance  sdkmath.Int `json:"freeBalance"`
	ReserveFloor sdkmath.Int `json:"reserveFloor"`
	OpenSessions int         `json:"openSessions"`
}

type AccountView struct {
	Addr       string `json:"addr"`
	Balance    uint64 `json:"balance"`
	Registered bool   `json:"registered"`
}

type PubKeyView struct {
	PubKey []byte `json:"pubKey"`
}

func (a *BJApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Paths:
	// - /house
	// - /params
	// - /account/<addr>
	// - /session/<player>
	// - /fairness/pubkey
	// - /fairness/proof/<sessionId>/<nonce>
	v, err := a.query(strings.TrimSpace(req.Path))
	if err != nil {
		space, code, msg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: space, Log: msg, Height: a.st.Height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
}

func (a *BJApp) query(path string) (any, error) {
	switch {
	case path == "/house":
		return HouseView{
			Owner:        a.st.House.Owner,
			Balance:      a.keeper.Balance(a.st),
			Exposure:     a.st.Exposure(),
			FreeBalance:  a.keeper.FreeBalance(a.st),
			ReserveFloor: a.st.Params.ReserveFloor(),
			OpenSessions: a.st.OpenSessions(),
		}, nil
	case path == "/params":
		return a.st.Params, nil
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		_, registered := a.st.AccountKeys[addr]
		return AccountView{Addr: addr, Balance: a.st.Balance(addr), Registered: registered}, nil
	case strings.HasPrefix(path, "/session/"):
		player := strings.TrimPrefix(path, "/session/")
		sess, ok := a.st.Sessions[player]
		if !ok {
			return nil, blackjack.ErrNoActiveSession.Wrapf("no session for %s", player)
		}
		return sess, nil
	case path == "/fairness/pubkey":
		if a.vrf == nil {
			return nil, ErrQuery.Wrap("fairness proofs disabled")
		}
		return PubKeyView{PubKey: a.vrf.PublicKey()}, nil
	case strings.HasPrefix(path, "/fairness/proof/"):
		return a.queryProof(strings.TrimPrefix(path, "/fairness/proof/"))
	default:
		return nil, ErrQuery.Wrapf("unknown query path %q", path)
	}
}

// queryProof reveals a draw proof only once the value has been consumed, so
// a player cannot preview upcoming cards.
func (a *BJApp) queryProof(rest string) (fairness.Evaluation, error) {
	if a.vrf == nil {
		return fairness.Evaluation{}, ErrQuery.Wrap("fairness proofs disabled")
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return fairness.Evaluation{}, ErrQuery.Wrap("want /fairness/proof/<sessionId>/<nonce>")
	}
	sessionID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return fairness.Evaluation{}, ErrQuery.Wrap("invalid session id")
	}
	nonce, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fairness.Evaluation{}, ErrQuery.Wrap("invalid nonce")
	}
	if sessionID == 0 || sessionID >= a.st.NextSessionID {
		return fairness.Evaluation{}, ErrQuery.Wrapf("session %d not found", sessionID)
	}
	for _, sess := range a.st.Sessions {
		if sess.ID == sessionID && nonce >= sess.Nonce {
			return fairness.Evaluation{}, ErrQuery.Wrapf("nonce %d not yet drawn in session %d", nonce, sessionID)
		}
	}
	return a.vrf.Prove(sessionID, nonce)
}
