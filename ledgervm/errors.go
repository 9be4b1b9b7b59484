// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import "errors"

// Terminal error taxonomy. Any of these raised at any call depth aborts the
// enclosing transaction; none of them is recoverable from inside a program.
var (
	ErrAlreadyInitialized                 = errors.New("account already initialized")
	ErrUnauthorized                       = errors.New("acting identity is not the account owner")
	ErrInsufficientFunds                  = errors.New("insufficient lamports")
	ErrOwnershipTransferRequiresEmptyData = errors.New("ownership transfer requires empty account data")
	ErrRentExemptionViolation             = errors.New("account balance below rent-exempt minimum")
	ErrCallDepthExceeded                  = errors.New("max call depth exceeded")
	ErrComputeBudgetExceeded              = errors.New("compute budget exceeded")
	ErrDiscriminatorMismatch              = errors.New("account discriminator mismatch")
	ErrAccountTooSmall                    = errors.New("account data too small for type")
	ErrNoValidBumpFound                   = errors.New("no valid bump found")
	ErrAccountNotFound                    = errors.New("account not found")

	ErrUnknownProgram   = errors.New("no program registered for identity")
	ErrMissingSignature = errors.New("required signature is missing")
	ErrSeedTooLong      = errors.New("seed exceeds max seed length")
	ErrTooManySeeds     = errors.New("too many seeds")
	ErrDataTooLarge     = errors.New("account data exceeds size limits")
	ErrBalanceOverflow  = errors.New("lamport balance overflow")
)
