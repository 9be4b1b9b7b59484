// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"math"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/assert"
)

var (
	ownerP = ids.ID{'P'}
	ownerQ = ids.ID{'Q'}
	addrA  = ids.ID{'a', 'c', 'c', 't', 'A'}
	addrB  = ids.ID{'a', 'c', 'c', 't', 'B'}
)

func newTestState() (*Store, *txState) {
	store := NewStore(memdb.New())
	return store, newTxState(store, NewRentPolicy())
}

func TestAccountSerializerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	acct := &Account{
		Address:    addrA,
		Lamports:   890880,
		Owner:      ownerP,
		Data:       []byte{1, 2, 3},
		Executable: true,
		RentEpoch:  7,
	}
	parsed, err := UnmarshalAccount(MarshalAccount(acct))
	assert.NoError(err)
	assert.Equal(acct, parsed)

	_, err = UnmarshalAccount(MarshalAccount(acct)[:10])
	assert.ErrorIs(err, ErrInvalidAccountFormat)
}

// Scenario: create an account owned by P, then attempt a write acting as
// Q != P. The write must fail Unauthorized and leave the account untouched.
func TestWriteUnauthorized(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()

	assert.NoError(tx.Create(addrA, ownerP, 890880, 0))

	err := tx.Write(addrA, ownerQ, []byte{1})
	assert.ErrorIs(err, ErrUnauthorized)

	acct, err := tx.getAccount(addrA)
	assert.NoError(err)
	assert.Equal(ownerP, acct.Owner)
	assert.Empty(acct.Data)
}

// For every mutating operation, an acting identity other than the stored
// owner must fail Unauthorized.
func TestOwnershipInvariant(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()

	assert.NoError(tx.Create(addrA, ownerP, 946560, 8))

	assert.ErrorIs(tx.Write(addrA, ownerQ, []byte{1}), ErrUnauthorized)
	assert.ErrorIs(tx.Debit(addrA, ownerQ, 1), ErrUnauthorized)
	assert.ErrorIs(tx.Assign(addrA, ownerQ, ownerQ), ErrUnauthorized)
	assert.ErrorIs(tx.Close(addrA, ownerQ, addrB), ErrUnauthorized)
}

func TestCreatePreconditions(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()

	assert.NoError(tx.Create(addrA, ownerP, 890880, 0))
	assert.ErrorIs(tx.Create(addrA, ownerP, 890880, 0), ErrAlreadyInitialized)

	// A zero-lamport system-owned leftover may be re-created.
	assert.NoError(tx.Credit(addrB, 0))
	assert.NoError(tx.Create(addrB, ownerP, 890880, 0))

	// A funded system-owned account may not.
	addrC := ids.ID{'a', 'c', 'c', 't', 'C'}
	assert.NoError(tx.Credit(addrC, 1))
	assert.ErrorIs(tx.Create(addrC, ownerP, 890880, 0), ErrAlreadyInitialized)
}

func TestWriteSizeLimits(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()

	assert.NoError(tx.Create(addrA, ownerP, 890880, 0))

	// Growth beyond the per-call delta is rejected; up to it is fine.
	assert.ErrorIs(tx.Write(addrA, ownerP, make([]byte, MaxDataGrowth+1)), ErrDataTooLarge)
	assert.NoError(tx.Write(addrA, ownerP, make([]byte, MaxDataGrowth)))
	assert.NoError(tx.Write(addrA, ownerP, make([]byte, 2*MaxDataGrowth)))

	// Shrinking is always permitted.
	assert.NoError(tx.Write(addrA, ownerP, nil))
}

func TestDebitRules(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()
	rent := NewRentPolicy()

	assert.NoError(tx.Create(addrA, ownerP, 2*rent.MinBalance(0), 0))

	assert.ErrorIs(tx.Debit(addrA, ownerP, 3*rent.MinBalance(0)), ErrInsufficientFunds)

	// Landing strictly between zero and the minimum is a rent violation.
	assert.ErrorIs(tx.Debit(addrA, ownerP, 2*rent.MinBalance(0)-1), ErrRentExemptionViolation)

	// Landing exactly at the minimum or at zero is fine.
	assert.NoError(tx.Debit(addrA, ownerP, rent.MinBalance(0)))
	assert.NoError(tx.Debit(addrA, ownerP, rent.MinBalance(0)))

	acct, err := tx.getAccount(addrA)
	assert.NoError(err)
	assert.Zero(acct.Lamports)
}

// Credit is unauthenticated: any caller may fund any address, including an
// absent one, and only overflow fails.
func TestCredit(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()

	assert.NoError(tx.Credit(addrA, 1000))
	acct, err := tx.getAccount(addrA)
	assert.NoError(err)
	assert.Equal(uint64(1000), acct.Lamports)
	assert.Equal(SystemIdentity, acct.Owner)

	assert.ErrorIs(tx.Credit(addrA, math.MaxUint64), ErrBalanceOverflow)
}

func TestAssignRequiresEmptyData(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()

	assert.NoError(tx.Create(addrA, ownerP, 946560, 8))
	assert.ErrorIs(tx.Assign(addrA, ownerP, ownerQ), ErrOwnershipTransferRequiresEmptyData)

	assert.NoError(tx.Write(addrA, ownerP, nil))
	assert.NoError(tx.Assign(addrA, ownerP, ownerQ))

	acct, err := tx.getAccount(addrA)
	assert.NoError(err)
	assert.Equal(ownerQ, acct.Owner)
}

func TestCloseAndSweep(t *testing.T) {
	assert := assert.New(t)
	store, tx := newTestState()
	rent := NewRentPolicy()

	assert.NoError(tx.Credit(addrB, 0))
	assert.NoError(tx.Create(addrA, ownerP, rent.MinBalance(8), 8))
	assert.NoError(tx.Close(addrA, ownerP, addrB))

	acct, err := tx.getAccount(addrA)
	assert.NoError(err)
	assert.Zero(acct.Lamports)
	assert.Empty(acct.Data)
	assert.Equal(SystemIdentity, acct.Owner)

	beneficiary, err := tx.getAccount(addrB)
	assert.NoError(err)
	assert.Equal(rent.MinBalance(8), beneficiary.Lamports)

	// Commit sweeps the fully-closed record back to absence.
	assert.NoError(tx.commit())
	_, err = store.GetAccount(addrA)
	assert.ErrorIs(err, ErrAccountNotFound)
	committed, err := store.GetAccount(addrB)
	assert.NoError(err)
	assert.Equal(rent.MinBalance(8), committed.Lamports)
}

func TestAbortDiscardsEverything(t *testing.T) {
	assert := assert.New(t)
	store, tx := newTestState()

	assert.NoError(tx.Create(addrA, ownerP, 890880, 0))
	tx.abort()

	_, err := store.GetAccount(addrA)
	assert.ErrorIs(err, ErrAccountNotFound)

	// A fresh working copy sees no trace either.
	fresh := newTxState(store, NewRentPolicy())
	_, err = fresh.getAccount(addrA)
	assert.ErrorIs(err, ErrAccountNotFound)
}

func TestRentGate(t *testing.T) {
	assert := assert.New(t)
	_, tx := newTestState()
	rent := NewRentPolicy()

	assert.NoError(tx.Create(addrA, ownerP, rent.MinBalance(8), 8))
	assert.NoError(tx.checkRent())

	// Growing the data without topping up the balance trips the gate.
	assert.NoError(tx.Write(addrA, ownerP, make([]byte, 64)))
	assert.ErrorIs(tx.checkRent(), ErrRentExemptionViolation)

	assert.NoError(tx.Credit(addrA, rent.MinBalance(64)-rent.MinBalance(8)))
	assert.NoError(tx.checkRent())
}
