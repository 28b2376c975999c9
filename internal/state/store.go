package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"

	"onchainblackjack/internal/blackjack"
)

// Store persists State in a cosmos-db key/value database. Every Save writes
// one batch, so a crash leaves either the previous or the new state.
type Store struct {
	db dbm.DB
}

type meta struct {
	Height        int64            `json:"height"`
	NextSessionID uint64           `json:"nextSessionId"`
	Params        blackjack.Params `json:"params"`
	House         House            `json:"house"`
}

func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

// OpenDB opens (or creates) the goleveldb state database under dir.
func OpenDB(dir string) (dbm.DB, error) {
	db, err := dbm.NewDB("state", dbm.GoLevelDBBackend, dir)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return db, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted state, or a fresh one if nothing was saved yet.
func (s *Store) Load() (*State, error) {
	bz, err := s.db.Get(MetaKey)
	if err != nil {
		return nil, fmt.Errorf("read state meta: %w", err)
	}
	st := NewState()
	if bz == nil {
		return st, nil
	}
	var m meta
	if err := json.Unmarshal(bz, &m); err != nil {
		return nil, fmt.Errorf("decode state meta: %w", err)
	}
	st.Height = m.Height
	st.NextSessionID = m.NextSessionID
	st.Params = m.Params
	st.House = m.House

	err = s.iterate(AccountPrefix, func(k string, v []byte) error {
		if len(v) != 8 {
			return fmt.Errorf("account %q: bad balance encoding", k)
		}
		st.Accounts[k] = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.iterate(AccountKeyPrefix, func(k string, v []byte) error {
		st.AccountKeys[k] = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.iterate(NoncePrefix, func(k string, v []byte) error {
		if len(v) != 8 {
			return fmt.Errorf("nonce %q: bad encoding", k)
		}
		st.NonceMax[k] = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.iterate(SessionPrefix, func(k string, v []byte) error {
		var sess Session
		if err := json.Unmarshal(v, &sess); err != nil {
			return fmt.Errorf("decode session %q: %w", k, err)
		}
		st.Sessions[k] = &sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	st.normalize()
	return st, nil
}

// Save writes st and removes keys that are no longer present.
func (s *Store) Save(st *State) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	bz, err := json.Marshal(meta{
		Height:        st.Height,
		NextSessionID: st.NextSessionID,
		Params:        st.Params,
		House:         st.House,
	})
	if err != nil {
		return fmt.Errorf("encode state meta: %w", err)
	}
	if err := batch.Set(MetaKey, bz); err != nil {
		return err
	}

	if err := s.pruneStale(batch, AccountPrefix, func(k string) bool { _, ok := st.Accounts[k]; return ok }); err != nil {
		return err
	}
	for addr, bal := range st.Accounts {
		if err := batch.Set(AccountKey(addr), u64be(bal)); err != nil {
			return err
		}
	}

	if err := s.pruneStale(batch, AccountKeyPrefix, func(k string) bool { _, ok := st.AccountKeys[k]; return ok }); err != nil {
		return err
	}
	for addr, pub := range st.AccountKeys {
		if err := batch.Set(AccountPubKeyKey(addr), pub); err != nil {
			return err
		}
	}

	if err := s.pruneStale(batch, NoncePrefix, func(k string) bool { _, ok := st.NonceMax[k]; return ok }); err != nil {
		return err
	}
	for signer, n := range st.NonceMax {
		if err := batch.Set(NonceKey(signer), u64be(n)); err != nil {
			return err
		}
	}

	if err := s.pruneStale(batch, SessionPrefix, func(k string) bool { _, ok := st.Sessions[k]; return ok }); err != nil {
		return err
	}
	for player, sess := range st.Sessions {
		bz, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session %q: %w", player, err)
		}
		if err := batch.Set(SessionKey(player), bz); err != nil {
			return err
		}
	}

	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Store) iterate(prefix []byte, fn func(key string, value []byte) error) error {
	it, err := s.db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err := fn(string(it.Key()[storePrefixLength:]), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

func (s *Store) pruneStale(batch dbm.Batch, prefix []byte, keep func(string) bool) error {
	var stale [][]byte
	err := s.iterate(prefix, func(k string, _ []byte) error {
		if !keep(k) {
			stale = append(stale, append(append([]byte{}, prefix...), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := batch.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
