package ledgervm

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/ids"
)

const (
	// Fixed-width prefix of an account record: address, owner, lamports,
	// rent epoch, executable flag, data length.
	accountPrefixSize = 32 + 32 + 8 + 8 + 1 + 4
)

var ErrInvalidAccountFormat = errors.New("invalid account record format")

func MarshalAccount(a *Account) []byte {
	raw := make([]byte, accountPrefixSize+len(a.Data))
	work := raw

	copy(work, a.Address[:])
	work = work[32:]
	copy(work, a.Owner[:])
	work = work[32:]
	binary.BigEndian.PutUint64(work, a.Lamports)
	work = work[8:]
	binary.BigEndian.PutUint64(work, a.RentEpoch)
	work = work[8:]
	if a.Executable {
		work[0] = 1
	}
	work = work[1:]
	binary.BigEndian.PutUint32(work, uint32(len(a.Data)))
	work = work[4:]
	copy(work, a.Data)
	return raw
}

func UnmarshalAccount(raw []byte) (*Account, error) {
	if len(raw) < accountPrefixSize {
		return nil, ErrInvalidAccountFormat
	}
	var a Account
	work := raw

	// Address
	id := ids.ID{}
	copy(id[:], work[:32])
	a.Address = id
	work = work[32:]

	// Owner
	owner := ids.ID{}
	copy(owner[:], work[:32])
	a.Owner = owner
	work = work[32:]

	// Lamports
	a.Lamports = binary.BigEndian.Uint64(work)
	work = work[8:]

	// RentEpoch
	a.RentEpoch = binary.BigEndian.Uint64(work)
	work = work[8:]

	// Executable
	a.Executable = work[0] == 1
	work = work[1:]

	// Data
	dataLen := binary.BigEndian.Uint32(work)
	work = work[4:]
	if uint32(len(work)) != dataLen {
		return nil, ErrInvalidAccountFormat
	}
	a.Data = make([]byte, dataLen)
	copy(a.Data, work)
	return &a, nil
}
