// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"github.com/ava-labs/avalanchego/ids"
)

const (
	// MaxDataSize is the absolute cap on a single account's data length.
	MaxDataSize = 10 * 1024 * 1024

	// MaxDataGrowth is the largest permitted size increase in one write.
	MaxDataGrowth = 10 * 1024
)

// SystemIdentity is the identity owning every account that has not been
// assigned to a program. Its canonical rendering is the all-ones base58
// string, which decodes to 32 zero bytes.
var SystemIdentity = ids.ID{}

// Account is the logical account record shared with the persistence layer.
// Non-existence is represented as absence from the store and is distinct
// from a zero-lamport, system-owned record.
type Account struct {
	Address    ids.ID
	Lamports   uint64
	Owner      ids.ID
	Data       []byte
	Executable bool
	RentEpoch  uint64
}

// Copy returns a deep copy of the account so callers cannot alias store
// internals through the data slice.
func (a *Account) Copy() *Account {
	cp := *a
	cp.Data = make([]byte, len(a.Data))
	copy(cp.Data, a.Data)
	return &cp
}

// closed reports whether the account is in the fully-closed shape: no
// lamports, no data, owned by the system identity.
func (a *Account) closed() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner == SystemIdentity
}
