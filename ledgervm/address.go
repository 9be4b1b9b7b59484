// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"filippo.io/edwards25519"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

const (
	// MaxSeeds bounds the number of seeds in one derivation.
	MaxSeeds = 16

	// MaxSeedLen bounds the length of an individual seed.
	MaxSeedLen = 32
)

// derivationDomain separates derived-address preimages from every other use
// of the hash function.
var derivationDomain = []byte("ProgramDerivedAddress")

// DerivedAddress is the output of Derive: a key-less address plus the bump
// byte that avoided a valid curve point.
type DerivedAddress struct {
	Address ids.ID
	Bump    byte
}

// isOffCurve reports whether the candidate cannot be decompressed into a
// valid edwards25519 point, i.e. no private key can ever sign for it.
// Swapped out in tests to reach the exhaustion path.
var isOffCurve = func(candidate ids.ID) bool {
	_, err := new(edwards25519.Point).SetBytes(candidate[:])
	return err != nil
}

// Derive computes the deterministic, key-less address for [program] and
// [seeds]. Bump candidates are tried from 255 down to 0; the first candidate
// that is not a valid curve point wins. Pure: identical inputs always yield
// the identical (address, bump) pair.
func Derive(program ids.ID, seeds [][]byte) (DerivedAddress, error) {
	if err := checkSeeds(seeds); err != nil {
		return DerivedAddress{}, err
	}
	for bump := 255; bump >= 0; bump-- {
		candidate := derivationHash(program, seeds, byte(bump))
		if isOffCurve(candidate) {
			return DerivedAddress{Address: candidate, Bump: byte(bump)}, nil
		}
	}
	return DerivedAddress{}, ErrNoValidBumpFound
}

// Reconstruct recomputes the candidate address for a caller-supplied bump.
// It is used to verify programmatic signing claims during nested invocation:
// a claim is valid only if the reconstructed address matches and is off
// curve.
func Reconstruct(program ids.ID, seeds [][]byte, bump byte) (ids.ID, error) {
	if err := checkSeeds(seeds); err != nil {
		return ids.ID{}, err
	}
	candidate := derivationHash(program, seeds, bump)
	if !isOffCurve(candidate) {
		return ids.ID{}, ErrNoValidBumpFound
	}
	return candidate, nil
}

func derivationHash(program ids.ID, seeds [][]byte, bump byte) ids.ID {
	preimage := make([]byte, 0, 256)
	for _, seed := range seeds {
		preimage = append(preimage, seed...)
	}
	preimage = append(preimage, bump)
	preimage = append(preimage, program[:]...)
	preimage = append(preimage, derivationDomain...)

	candidate := ids.ID{}
	copy(candidate[:], hashing.ComputeHash256(preimage))
	return candidate
}

func checkSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return ErrTooManySeeds
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return ErrSeedTooLong
		}
	}
	return nil
}
