// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// txState is the transaction-scoped working copy of the account store.
// Every operation is checked before it is applied, so each call is fully
// applied or fully rejected; commit makes the whole batch visible atomically
// and abort discards it without trace.
type txState struct {
	store   *Store
	baseDB  *versiondb.Database
	rent    RentPolicy
	touched map[ids.ID]struct{}
}

func newTxState(store *Store, rent RentPolicy) *txState {
	return &txState{
		store:   store,
		baseDB:  versiondb.New(store.acctDB),
		rent:    rent,
		touched: make(map[ids.ID]struct{}),
	}
}

func (t *txState) getAccount(addr ids.ID) (*Account, error) {
	raw, err := t.baseDB.Get(addr[:])
	if err == database.ErrNotFound {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return UnmarshalAccount(raw)
}

func (t *txState) putAccount(acct *Account) error {
	t.touched[acct.Address] = struct{}{}
	return t.baseDB.Put(acct.Address[:], MarshalAccount(acct))
}

// Create materializes [addr] as a fresh account owned by [owner] with
// [lamports] credited and [dataLen] zeroed bytes allocated. The address must
// be absent or a zero-lamport system-owned leftover.
func (t *txState) Create(addr ids.ID, owner ids.ID, lamports uint64, dataLen int) error {
	if dataLen < 0 || dataLen > MaxDataSize {
		return ErrDataTooLarge
	}
	prev, err := t.getAccount(addr)
	if err == nil {
		if prev.Owner != SystemIdentity || prev.Lamports != 0 {
			return ErrAlreadyInitialized
		}
	} else if err != ErrAccountNotFound {
		return err
	}
	return t.putAccount(&Account{
		Address:  addr,
		Lamports: lamports,
		Owner:    owner,
		Data:     make([]byte, dataLen),
	})
}

// Write replaces the account's data. Only the current owner may write.
// Growth is capped per call; the absolute size cap always holds.
func (t *txState) Write(addr ids.ID, acting ids.ID, newData []byte) error {
	acct, err := t.getAccount(addr)
	if err != nil {
		return err
	}
	if acct.Owner != acting {
		return ErrUnauthorized
	}
	if len(newData) > MaxDataSize {
		return ErrDataTooLarge
	}
	if len(newData) > len(acct.Data)+MaxDataGrowth {
		return ErrDataTooLarge
	}
	acct.Data = make([]byte, len(newData))
	copy(acct.Data, newData)
	return t.putAccount(acct)
}

// Debit reduces the account's balance. Only the current owner may debit, and
// the resulting balance must be at or above the rent-exempt minimum for the
// account's size, or exactly zero.
func (t *txState) Debit(addr ids.ID, acting ids.ID, amount uint64) error {
	acct, err := t.getAccount(addr)
	if err != nil {
		return err
	}
	if acct.Owner != acting {
		return ErrUnauthorized
	}
	remaining, err := safemath.Sub64(acct.Lamports, amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	if remaining != 0 && remaining < t.rent.MinBalance(len(acct.Data)) {
		return ErrRentExemptionViolation
	}
	acct.Lamports = remaining
	return t.putAccount(acct)
}

// Credit increases the account's balance. Unauthenticated: any caller may
// fund any address. Crediting an absent address materializes it as a fresh
// system-owned record, which is how external funding enters the store.
func (t *txState) Credit(addr ids.ID, amount uint64) error {
	acct, err := t.getAccount(addr)
	if err == ErrAccountNotFound {
		acct = &Account{Address: addr, Owner: SystemIdentity}
	} else if err != nil {
		return err
	}
	total, err := safemath.Add64(acct.Lamports, amount)
	if err != nil {
		return ErrBalanceOverflow
	}
	acct.Lamports = total
	return t.putAccount(acct)
}

// Assign transfers ownership to [newOwner]. Only the current owner may
// assign, and only while the account's data is empty.
func (t *txState) Assign(addr ids.ID, acting ids.ID, newOwner ids.ID) error {
	acct, err := t.getAccount(addr)
	if err != nil {
		return err
	}
	if acct.Owner != acting {
		return ErrUnauthorized
	}
	if len(acct.Data) != 0 {
		return ErrOwnershipTransferRequiresEmptyData
	}
	acct.Owner = newOwner
	return t.putAccount(acct)
}

// Close drains the account's full balance to [beneficiary], clears its data,
// and returns ownership to the system identity. Authorization matches Debit
// and Write.
func (t *txState) Close(addr ids.ID, acting ids.ID, beneficiary ids.ID) error {
	acct, err := t.getAccount(addr)
	if err != nil {
		return err
	}
	if acct.Owner != acting {
		return ErrUnauthorized
	}
	if err := t.Credit(beneficiary, acct.Lamports); err != nil {
		return err
	}
	acct.Lamports = 0
	acct.Data = nil
	acct.Owner = SystemIdentity
	return t.putAccount(acct)
}

// checkRent verifies the rent gate over every account the transaction has
// touched so far: each must be implicitly closed (zero lamports) or rent
// exempt for its current size.
func (t *txState) checkRent() error {
	for addr := range t.touched {
		acct, err := t.getAccount(addr)
		if err == ErrAccountNotFound {
			continue
		}
		if err != nil {
			return err
		}
		if acct.Lamports == 0 {
			continue
		}
		if acct.Owner == SystemIdentity {
			// Plain system-owned balances are gated per debit, not here.
			continue
		}
		if !t.rent.IsExempt(acct) {
			return fmt.Errorf("%w: %s", ErrRentExemptionViolation, addr)
		}
	}
	return nil
}

// commit sweeps fully-closed records back to absence, then atomically
// flushes the working copy into the committed store.
func (t *txState) commit() error {
	for addr := range t.touched {
		acct, err := t.getAccount(addr)
		if err == ErrAccountNotFound {
			continue
		}
		if err != nil {
			return err
		}
		if acct.closed() {
			if err := t.baseDB.Delete(addr[:]); err != nil {
				return err
			}
		}
	}
	if err := t.baseDB.Commit(); err != nil {
		return err
	}
	for addr := range t.touched {
		t.store.evict(addr)
	}
	return nil
}

// abort discards every change in the working copy.
func (t *txState) abort() {
	t.baseDB.Abort()
}
