// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"github.com/ava-labs/avalanchego/ids"
)

// AccountMeta declares one account an instruction references together with
// the privileges the instruction requests for it.
type AccountMeta struct {
	Address    ids.ID `serialize:"true"`
	IsSigner   bool   `serialize:"true"`
	IsWritable bool   `serialize:"true"`
}

// Instruction targets one program with an ordered account list and an opaque
// payload interpreted by that program.
type Instruction struct {
	ProgramID ids.ID        `serialize:"true"`
	Accounts  []AccountMeta `serialize:"true"`
	Data      []byte        `serialize:"true"`
}

// Transaction is an ordered instruction list plus the externally-verified
// signer set and the compute-unit limit. Signature verification happens
// before a transaction reaches the executor; the executor trusts Signers.
type Transaction struct {
	Instructions []Instruction `serialize:"true"`
	Signers      []ids.ID      `serialize:"true"`
	UnitLimit    uint64        `serialize:"true"`
}

// SignerSeeds is a programmatic signing claim attached to a nested
// invocation: the invoking program asserts that (its identity, Seeds, Bump)
// reconstructs one of the instruction's addresses.
type SignerSeeds struct {
	Seeds [][]byte
	Bump  byte
}

func (tx *Transaction) signerSet() map[ids.ID]struct{} {
	set := make(map[ids.ID]struct{}, len(tx.Signers))
	for _, addr := range tx.Signers {
		set[addr] = struct{}{}
	}
	return set
}
