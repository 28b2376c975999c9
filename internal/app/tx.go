package app

import (
	"encoding/json"
	"fmt"
	"sort"

	abci "github.com/cometbft/cometbft/abci/types"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/codec"
	"onchainblackjack/internal/ledger"
	"onchainblackjack/internal/state"
)

// Event types.
const (
	EventBankMinted        = "BankMinted"
	EventBankSent          = "BankSent"
	EventAccountRegistered = "AccountRegistered"
	EventHouseFunded       = "HouseFunded"
	EventHouseWithdrawn    = "HouseWithdrawn"
	EventGameStarted       = "GameStarted"
	EventPlayerHit         = "PlayerHit"
	EventDealerPlayed      = "DealerPlayed"
	EventGameSettled       = "GameSettled"
)

func knownTxType(typ string) bool {
	switch typ {
	case codec.TypeBankMint, codec.TypeBankSend, codec.TypeAuthRegisterAccount,
		codec.TypeHouseFund, codec.TypeHouseWithdraw,
		codec.TypeBlackjackStart, codec.TypeBlackjackHit, codec.TypeBlackjackStand:
		return true
	default:
		return false
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return ErrInvalidTx.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

func authErr(err error) error {
	return ErrUnauthorized.Wrap(err.Error())
}

func (a *BJApp) execTx(st *state.State, env codec.TxEnvelope) (*abci.ExecTxResult, []ledger.OutcomeRecord, error) {
	switch env.Type {
	case codec.TypeBankMint:
		var msg codec.BankMintTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if msg.To == "" || msg.Amount == 0 {
			return nil, nil, ErrInvalidTx.Wrap("missing to/amount")
		}
		if err := requireAccountAuth(st, env, st.House.Owner); err != nil {
			return nil, nil, authErr(err)
		}
		if err := st.Credit(msg.To, msg.Amount); err != nil {
			return nil, nil, ErrInvalidTx.Wrap(err.Error())
		}
		return okEvent(EventBankMinted, map[string]string{
			"to":     msg.To,
			"amount": fmt.Sprintf("%d", msg.Amount),
		}), nil, nil

	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if msg.From == "" || msg.To == "" || msg.Amount == 0 {
			return nil, nil, ErrInvalidTx.Wrap("missing from/to/amount")
		}
		if err := requireAccountAuth(st, env, msg.From); err != nil {
			return nil, nil, authErr(err)
		}
		if err := st.Debit(msg.From, msg.Amount); err != nil {
			return nil, nil, ErrInvalidTx.Wrap(err.Error())
		}
		if err := st.Credit(msg.To, msg.Amount); err != nil {
			return nil, nil, ErrInvalidTx.Wrap(err.Error())
		}
		return okEvent(EventBankSent, map[string]string{
			"from":   msg.From,
			"to":     msg.To,
			"amount": fmt.Sprintf("%d", msg.Amount),
		}), nil, nil

	case codec.TypeAuthRegisterAccount:
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if err := requireRegisterAccountAuth(st, env, msg); err != nil {
			return nil, nil, authErr(err)
		}
		st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
		return okEvent(EventAccountRegistered, map[string]string{
			"account": msg.Account,
		}), nil, nil

	case codec.TypeHouseFund:
		var msg codec.HouseFundTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if err := requireAccountAuth(st, env, msg.From); err != nil {
			return nil, nil, authErr(err)
		}
		if err := a.keeper.Fund(st, msg.From, msg.Amount); err != nil {
			return nil, nil, err
		}
		return okEvent(EventHouseFunded, map[string]string{
			"from":    msg.From,
			"amount":  fmt.Sprintf("%d", msg.Amount),
			"balance": st.House.Balance.String(),
		}), nil, nil

	case codec.TypeHouseWithdraw:
		var msg codec.HouseWithdrawTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if err := requireAccountAuth(st, env, msg.Owner); err != nil {
			return nil, nil, authErr(err)
		}
		if err := a.keeper.Withdraw(st, msg.Owner, msg.Amount); err != nil {
			return nil, nil, err
		}
		return okEvent(EventHouseWithdrawn, map[string]string{
			"owner":   msg.Owner,
			"amount":  msg.Amount.String(),
			"balance": st.House.Balance.String(),
		}), nil, nil

	case codec.TypeBlackjackStart:
		var msg codec.BlackjackStartTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if err := requireAccountAuth(st, env, msg.Player); err != nil {
			return nil, nil, authErr(err)
		}
		id, err := a.keeper.StartGame(st, msg.Player, msg.Value)
		if err != nil {
			return nil, nil, err
		}
		sess := st.Sessions[msg.Player]
		return okEvent(EventGameStarted, map[string]string{
			"sessionId":  fmt.Sprintf("%d", id),
			"player":     msg.Player,
			"stake":      sess.Stake.String(),
			"playerHand": blackjack.FormatHand(sess.PlayerHand),
		}), nil, nil

	case codec.TypeBlackjackHit:
		var msg codec.BlackjackHitTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if err := requireAccountAuth(st, env, msg.Player); err != nil {
			return nil, nil, authErr(err)
		}
		hs, err := a.keeper.Hit(st, msg.Player, msg.SessionID)
		if err != nil {
			return nil, nil, err
		}
		res := okEvent(EventPlayerHit, map[string]string{
			"sessionId":  fmt.Sprintf("%d", hs.SessionID),
			"player":     hs.Player,
			"card":       hs.PlayerHand[len(hs.PlayerHand)-1].String(),
			"playerHand": blackjack.FormatHand(hs.PlayerHand),
			"total":      fmt.Sprintf("%d", hs.Score.Total),
			"phase":      string(hs.Phase),
		})
		if hs.Settled == nil {
			return res, nil, nil
		}
		res.Events = append(res.Events, settledEvent(*hs.Settled))
		return res, []ledger.OutcomeRecord{*hs.Settled}, nil

	case codec.TypeBlackjackStand:
		var msg codec.BlackjackStandTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, nil, err
		}
		if err := requireAccountAuth(st, env, msg.Player); err != nil {
			return nil, nil, authErr(err)
		}
		rec, err := a.keeper.Stand(st, msg.Player, msg.SessionID)
		if err != nil {
			return nil, nil, err
		}
		res := okEvent(EventDealerPlayed, map[string]string{
			"sessionId":  fmt.Sprintf("%d", rec.SessionID),
			"threshold":  fmt.Sprintf("%d", rec.DealerThreshold),
			"dealerHand": blackjack.FormatHand(rec.DealerHand),
			"total":      fmt.Sprintf("%d", rec.DealerTotal),
		})
		res.Events = append(res.Events, settledEvent(rec))
		return res, []ledger.OutcomeRecord{rec}, nil

	default:
		return nil, nil, ErrUnknownTx.Wrap(env.Type)
	}
}

func settledEvent(rec ledger.OutcomeRecord) abci.Event {
	return event(EventGameSettled, map[string]string{
		"sessionId":  fmt.Sprintf("%d", rec.SessionID),
		"player":     rec.Player,
		"outcome":    string(rec.Outcome),
		"playerHand": blackjack.FormatHand(rec.PlayerHand),
		"dealerHand": blackjack.FormatHand(rec.DealerHand),
		"payout":     rec.Payout.String(),
	})
}

func event(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	return &abci.ExecTxResult{
		Code:   0,
		Events: []abci.Event{event(typ, attrs)},
	}
}
