// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/assert"
)

func TestTransactionWireFormat(t *testing.T) {
	assert := assert.New(t)

	tx := &Transaction{
		Instructions: []Instruction{
			NewTransferInstruction(ids.ID{'f'}, ids.ID{'t'}, 890880),
			{
				ProgramID: ids.ID{'p'},
				Accounts: []AccountMeta{
					{Address: ids.ID{'x'}, IsSigner: true, IsWritable: true},
				},
				Data: []byte{1, 2, 3},
			},
		},
		Signers:   []ids.ID{{'f'}, {'x'}},
		UnitLimit: 200000,
	}

	raw, err := MarshalTransaction(tx)
	assert.NoError(err)

	parsed, err := ParseTransaction(raw)
	assert.NoError(err)
	assert.Equal(tx, parsed)

	_, err = ParseTransaction(raw[:len(raw)-2])
	assert.Error(err)
}
