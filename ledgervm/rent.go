// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

const (
	// AccountOverhead is the storage overhead charged on top of the data
	// length when sizing an account for rent.
	AccountOverhead = 128

	// LamportsPerByteYear is the rent rate.
	LamportsPerByteYear = 3480

	// ExemptionYears is the number of prepaid years that makes an account
	// rent exempt.
	ExemptionYears = 2
)

// RentPolicy decides the minimum balance an account must hold for its size.
// The zero value uses the default rate constants.
type RentPolicy struct {
	lamportsPerByteYear uint64
	exemptionYears      uint64
}

func NewRentPolicy() RentPolicy {
	return RentPolicy{
		lamportsPerByteYear: LamportsPerByteYear,
		exemptionYears:      ExemptionYears,
	}
}

// MinBalance returns the rent-exempt minimum for an account with [dataLen]
// bytes of data. Pure function of size only.
func (r RentPolicy) MinBalance(dataLen int) uint64 {
	rate := r.lamportsPerByteYear
	if rate == 0 {
		rate = LamportsPerByteYear
	}
	years := r.exemptionYears
	if years == 0 {
		years = ExemptionYears
	}
	return (uint64(dataLen) + AccountOverhead) * rate * years
}

// IsExempt reports whether the account holds at least the rent-exempt
// minimum for its current data length.
func (r RentPolicy) IsExempt(a *Account) bool {
	return a.Lamports >= r.MinBalance(len(a.Data))
}
