// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

// OpCode names a primitive operation for compute metering.
type OpCode uint8

const (
	OpCreate OpCode = iota
	OpWrite
	OpDebit
	OpCredit
	OpAssign
	OpClose
	OpInvoke
	OpDerive
	OpDecode
)

// CostTable maps primitive operations to compute-unit costs. It is supplied
// per transaction by the caller; the exact prices are policy, only monotonic
// consumption is guaranteed by the meter.
type CostTable map[OpCode]uint64

// DefaultCostTable returns the built-in prices used when the caller supplies
// none.
func DefaultCostTable() CostTable {
	return CostTable{
		OpCreate: 150,
		OpWrite:  100,
		OpDebit:  50,
		OpCredit: 50,
		OpAssign: 50,
		OpClose:  150,
		OpInvoke: 1000,
		OpDerive: 1500,
		OpDecode: 100,
	}
}

// computeMeter is the per-transaction budget counter. It only ever counts
// down; exhaustion is terminal for the transaction.
type computeMeter struct {
	remaining uint64
}

func newComputeMeter(limit uint64) *computeMeter {
	return &computeMeter{remaining: limit}
}

func (m *computeMeter) consume(units uint64) error {
	if units > m.remaining {
		m.remaining = 0
		return ErrComputeBudgetExceeded
	}
	m.remaining -= units
	return nil
}
