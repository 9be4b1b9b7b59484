// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinBalance(t *testing.T) {
	assert := assert.New(t)
	rent := NewRentPolicy()

	// (dataLen + 128) * 3480 * 2
	assert.Equal(uint64(890880), rent.MinBalance(0))
	assert.Equal(uint64(946560), rent.MinBalance(8))
	assert.Equal(uint64(1602240), rent.MinBalance(102))

	// Pure function of size only: repeated calls agree.
	assert.Equal(rent.MinBalance(1024), rent.MinBalance(1024))
}

func TestIsExempt(t *testing.T) {
	assert := assert.New(t)
	rent := NewRentPolicy()

	acct := &Account{Data: make([]byte, 8)}

	acct.Lamports = rent.MinBalance(8)
	assert.True(rent.IsExempt(acct))

	acct.Lamports = rent.MinBalance(8) - 1
	assert.False(rent.IsExempt(acct))

	acct.Lamports = rent.MinBalance(8) + 1
	assert.True(rent.IsExempt(acct))
}

// The zero value must behave identically to NewRentPolicy so an unset policy
// can never weaken the gate.
func TestZeroValuePolicy(t *testing.T) {
	assert := assert.New(t)

	var rent RentPolicy
	assert.Equal(NewRentPolicy().MinBalance(64), rent.MinBalance(64))
}
