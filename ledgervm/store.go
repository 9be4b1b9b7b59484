// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/ids"
)

const accountCacheSize = 8192

// This is the prefix for account record db keys.
// It's important to keep it distinct from any other keyspace sharing the db.
var accountStatePrefix = []byte("account")

// Store is the committed account store: a keyed map from address to account
// record backed by a database. All mutation flows through transaction-scoped
// working copies (see txState); nothing written there is visible here until
// commit.
type Store struct {
	acctCache cache.Cacher
	acctDB    database.Database
}

func NewStore(db database.Database) *Store {
	return &Store{
		acctCache: &cache.LRU{Size: accountCacheSize},
		acctDB:    prefixdb.New(accountStatePrefix, db),
	}
}

// GetAccount returns a copy of the committed record at [addr], or
// ErrAccountNotFound if the address is absent.
func (s *Store) GetAccount(addr ids.ID) (*Account, error) {
	if acctIntf, ok := s.acctCache.Get(addr); ok {
		if acctIntf == nil {
			return nil, ErrAccountNotFound
		}
		return acctIntf.(*Account).Copy(), nil
	}

	raw, err := s.acctDB.Get(addr[:])
	if err == database.ErrNotFound {
		s.acctCache.Put(addr, nil)
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	acct, err := UnmarshalAccount(raw)
	if err != nil {
		return nil, err
	}
	s.acctCache.Put(addr, acct)
	return acct.Copy(), nil
}

// PutAccount writes [acct] directly to the committed store. The executor
// never calls this during a transaction; it exists for genesis population
// and program registration.
func (s *Store) PutAccount(acct *Account) error {
	cp := acct.Copy()
	s.acctCache.Put(cp.Address, cp)
	return s.acctDB.Put(cp.Address[:], MarshalAccount(cp))
}

// evict drops any cached record for [addr] so the next read goes to the
// database. Called for every address a committed transaction touched.
func (s *Store) evict(addr ids.ID) {
	s.acctCache.Evict(addr)
}

// ClearCache drops every cached record.
func (s *Store) ClearCache() {
	s.acctCache.Flush()
}
