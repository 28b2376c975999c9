package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"

	"onchainblackjack/internal/blackjack"
	"onchainblackjack/internal/ledger"
)

var ErrNotFound = errors.New("not found")

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Archive is the off-chain record of settled sessions. Rows are keyed by
// session ID, so re-recording a block after a restart is a no-op.
type Archive struct {
	db     *sql.DB
	logger log.Logger
}

type Outcome struct {
	ledger.OutcomeRecord
	ArchivedAt time.Time `json:"archivedAt"`
}

type Filter struct {
	Player string
	// BeforeSession pages backwards; 0 starts from the newest.
	BeforeSession uint64
	Limit         int
}

type PlayerStats struct {
	Player string      `json:"player"`
	Games  int64       `json:"games"`
	Wins   int64       `json:"wins"`
	Losses int64       `json:"losses"`
	Pushes int64       `json:"pushes"`
	Staked sdkmath.Int `json:"staked"`
	Paid   sdkmath.Int `json:"paid"`
}

func New(db *sql.DB, logger log.Logger) *Archive {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Archive{db: db, logger: logger.With("module", "archive")}
}

func Open(path string, logger log.Logger) (*Archive, error) {
	db, err := OpenAndMigrate(path)
	if err != nil {
		return nil, err
	}
	return New(db, logger), nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// RecordOutcomes stores recs in one transaction.
func (a *Archive) RecordOutcomes(ctx context.Context, recs []ledger.OutcomeRecord) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO outcomes
		(session_id, player, outcome, player_hand, dealer_hand, player_total, dealer_total, dealer_threshold, stake, payout, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		ph, err := json.Marshal(r.PlayerHand)
		if err != nil {
			return err
		}
		dh, err := json.Marshal(nonNil(r.DealerHand))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			int64(r.SessionID), r.Player, string(r.Outcome), string(ph), string(dh),
			r.PlayerTotal, r.DealerTotal, r.DealerThreshold,
			intString(r.Stake), intString(r.Payout), r.Height,
		); err != nil {
			return fmt.Errorf("insert outcome %d: %w", r.SessionID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcomes: %w", err)
	}
	a.logger.Debug("archived outcomes", "count", len(recs))
	return nil
}

const selectOutcome = `SELECT session_id, player, outcome, player_hand, dealer_hand, player_total, dealer_total,
	dealer_threshold, stake, payout, height, archived_at FROM outcomes`

func (a *Archive) GetOutcome(ctx context.Context, sessionID uint64) (*Outcome, error) {
	row := a.db.QueryRowContext(ctx, selectOutcome+` WHERE session_id = ?`, int64(sessionID))
	o, err := scanOutcome(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListOutcomes returns outcomes newest first.
func (a *Archive) ListOutcomes(ctx context.Context, f Filter) ([]Outcome, error) {
	if f.Limit <= 0 || f.Limit > maxLimit {
		f.Limit = defaultLimit
	}
	q := selectOutcome + ` WHERE 1=1`
	var args []any
	if f.Player != "" {
		q += ` AND player = ?`
		args = append(args, f.Player)
	}
	if f.BeforeSession > 0 {
		q += ` AND session_id < ?`
		args = append(args, int64(f.BeforeSession))
	}
	q += ` ORDER BY session_id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	out := []Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}

// Stats aggregates a player's archived games.
func (a *Archive) Stats(ctx context.Context, player string) (PlayerStats, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT outcome, stake, payout FROM outcomes WHERE player = ?`, player)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("player stats: %w", err)
	}
	defer rows.Close()

	st := PlayerStats{Player: player, Staked: sdkmath.ZeroInt(), Paid: sdkmath.ZeroInt()}
	for rows.Next() {
		var outcome, stake, payout string
		if err := rows.Scan(&outcome, &stake, &payout); err != nil {
			return PlayerStats{}, fmt.Errorf("scan stats: %w", err)
		}
		st.Games++
		switch blackjack.Outcome(outcome) {
		case blackjack.PlayerWin:
			st.Wins++
		case blackjack.PlayerLoss:
			st.Losses++
		case blackjack.Push:
			st.Pushes++
		}
		s, ok := sdkmath.NewIntFromString(stake)
		if !ok {
			return PlayerStats{}, fmt.Errorf("decode stake for %s: %q", player, stake)
		}
		p, ok := sdkmath.NewIntFromString(payout)
		if !ok {
			return PlayerStats{}, fmt.Errorf("decode payout for %s: %q", player, payout)
		}
		st.Staked = st.Staked.Add(s)
		st.Paid = st.Paid.Add(p)
	}
	if err := rows.Err(); err != nil {
		return PlayerStats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(s scanner) (*Outcome, error) {
	var (
		o             Outcome
		id            int64
		outcome       string
		ph, dh        string
		stake, payout string
	)
	err := s.Scan(&id, &o.Player, &outcome, &ph, &dh, &o.PlayerTotal, &o.DealerTotal,
		&o.DealerThreshold, &stake, &payout, &o.Height, &o.ArchivedAt)
	if err != nil {
		return nil, err
	}
	o.SessionID = uint64(id)
	o.Outcome = blackjack.Outcome(outcome)
	if err := json.Unmarshal([]byte(ph), &o.PlayerHand); err != nil {
		return nil, fmt.Errorf("decode player hand %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(dh), &o.DealerHand); err != nil {
		return nil, fmt.Errorf("decode dealer hand %d: %w", id, err)
	}
	var ok bool
	if o.Stake, ok = sdkmath.NewIntFromString(stake); !ok {
		return nil, fmt.Errorf("decode stake %d: %q", id, stake)
	}
	if o.Payout, ok = sdkmath.NewIntFromString(payout); !ok {
		return nil, fmt.Errorf("decode payout %d: %q", id, payout)
	}
	return &o, nil
}

func intString(i sdkmath.Int) string {
	if i.IsNil() {
		return "0"
	}
	return i.String()
}

func nonNil(cards []blackjack.Card) []blackjack.Card {
	if cards == nil {
		return []blackjack.Card{}
	}
	return cards
}
