// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/ids"
)

// System program instruction types, encoded as a little-endian u32 prefix on
// the instruction payload.
const (
	SystemInstrCreateAccount uint32 = iota
	SystemInstrTransfer
	SystemInstrAssign
	SystemInstrAllocate
)

var (
	errInvalidSystemInstruction = errors.New("invalid system program instruction")
	errMissingAccounts          = errors.New("system program instruction is missing accounts")
)

// runSystemProgram executes the built-in program that owns every fresh
// account. Its authorization model is signature based: the funding source
// and any account being brought to life or reshaped must hold signer
// privilege in the current frame, which a programmatic seed claim satisfies
// for derived addresses. Each instruction compiles down to the store
// primitives, so the ownership and rent invariants hold with no special
// casing.
func runSystemProgram(ctx *InvokeContext) error {
	instr := ctx.Instruction()
	if len(instr.Data) < 4 {
		return errInvalidSystemInstruction
	}
	instrType := binary.LittleEndian.Uint32(instr.Data)
	payload := instr.Data[4:]

	switch instrType {
	case SystemInstrCreateAccount:
		return systemCreateAccount(ctx, payload)
	case SystemInstrTransfer:
		return systemTransfer(ctx, payload)
	case SystemInstrAssign:
		return systemAssign(ctx, payload)
	case SystemInstrAllocate:
		return systemAllocate(ctx, payload)
	default:
		return errInvalidSystemInstruction
	}
}

// systemCreateAccount debits the funder and creates the new account in one
// step: accounts[0] is the funder, accounts[1] the address being created.
// Both must be signers.
func systemCreateAccount(ctx *InvokeContext, payload []byte) error {
	if len(payload) < 8+8+32 {
		return errInvalidSystemInstruction
	}
	lamports := binary.LittleEndian.Uint64(payload)
	space := binary.LittleEndian.Uint64(payload[8:])
	owner := ids.ID{}
	copy(owner[:], payload[16:48])

	funder, newAcct, err := twoAccounts(ctx)
	if err != nil {
		return err
	}
	if !ctx.IsSigner(funder) || !ctx.IsSigner(newAcct) {
		return ErrMissingSignature
	}
	if space > MaxDataSize {
		return ErrDataTooLarge
	}
	if err := ctx.Debit(funder, lamports); err != nil {
		return err
	}
	return ctx.Create(newAcct, owner, lamports, int(space))
}

// systemTransfer moves lamports from accounts[0] to accounts[1]. Only the
// source must sign; anyone may be credited.
func systemTransfer(ctx *InvokeContext, payload []byte) error {
	if len(payload) < 8 {
		return errInvalidSystemInstruction
	}
	lamports := binary.LittleEndian.Uint64(payload)

	from, to, err := twoAccounts(ctx)
	if err != nil {
		return err
	}
	if !ctx.IsSigner(from) {
		return ErrMissingSignature
	}
	if err := ctx.Debit(from, lamports); err != nil {
		return err
	}
	return ctx.Credit(to, lamports)
}

// systemAssign hands accounts[0], which must sign, to a new owner.
func systemAssign(ctx *InvokeContext, payload []byte) error {
	if len(payload) < 32 {
		return errInvalidSystemInstruction
	}
	owner := ids.ID{}
	copy(owner[:], payload[:32])

	target, err := oneAccount(ctx)
	if err != nil {
		return err
	}
	if !ctx.IsSigner(target) {
		return ErrMissingSignature
	}
	return ctx.Assign(target, owner)
}

// systemAllocate grows accounts[0], which must sign, to [space] zeroed
// bytes. The per-call growth cap applies.
func systemAllocate(ctx *InvokeContext, payload []byte) error {
	if len(payload) < 8 {
		return errInvalidSystemInstruction
	}
	space := binary.LittleEndian.Uint64(payload)

	target, err := oneAccount(ctx)
	if err != nil {
		return err
	}
	if !ctx.IsSigner(target) {
		return ErrMissingSignature
	}
	if space > MaxDataSize {
		return ErrDataTooLarge
	}
	return ctx.Write(target, make([]byte, space))
}

func oneAccount(ctx *InvokeContext) (ids.ID, error) {
	metas := ctx.Instruction().Accounts
	if len(metas) < 1 {
		return ids.ID{}, errMissingAccounts
	}
	return metas[0].Address, nil
}

func twoAccounts(ctx *InvokeContext) (ids.ID, ids.ID, error) {
	metas := ctx.Instruction().Accounts
	if len(metas) < 2 {
		return ids.ID{}, ids.ID{}, errMissingAccounts
	}
	return metas[0].Address, metas[1].Address, nil
}

// NewCreateAccountInstruction builds a system instruction creating
// [newAccount] owned by [owner], funded by [funder].
func NewCreateAccountInstruction(funder, newAccount, owner ids.ID, lamports, space uint64) Instruction {
	payload := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(payload, SystemInstrCreateAccount)
	binary.LittleEndian.PutUint64(payload[4:], lamports)
	binary.LittleEndian.PutUint64(payload[12:], space)
	copy(payload[20:], owner[:])
	return Instruction{
		ProgramID: SystemIdentity,
		Accounts: []AccountMeta{
			{Address: funder, IsSigner: true, IsWritable: true},
			{Address: newAccount, IsSigner: true, IsWritable: true},
		},
		Data: payload,
	}
}

// NewTransferInstruction builds a system instruction moving [lamports] from
// [from] to [to].
func NewTransferInstruction(from, to ids.ID, lamports uint64) Instruction {
	payload := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(payload, SystemInstrTransfer)
	binary.LittleEndian.PutUint64(payload[4:], lamports)
	return Instruction{
		ProgramID: SystemIdentity,
		Accounts: []AccountMeta{
			{Address: from, IsSigner: true, IsWritable: true},
			{Address: to, IsWritable: true},
		},
		Data: payload,
	}
}

// NewAssignInstruction builds a system instruction handing [target] to
// [owner].
func NewAssignInstruction(target, owner ids.ID) Instruction {
	payload := make([]byte, 4+32)
	binary.LittleEndian.PutUint32(payload, SystemInstrAssign)
	copy(payload[4:], owner[:])
	return Instruction{
		ProgramID: SystemIdentity,
		Accounts: []AccountMeta{
			{Address: target, IsSigner: true, IsWritable: true},
		},
		Data: payload,
	}
}

// NewAllocateInstruction builds a system instruction sizing [target] to
// [space] zeroed bytes.
func NewAllocateInstruction(target ids.ID, space uint64) Instruction {
	payload := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(payload, SystemInstrAllocate)
	binary.LittleEndian.PutUint64(payload[4:], space)
	return Instruction{
		ProgramID: SystemIdentity,
		Accounts: []AccountMeta{
			{Address: target, IsSigner: true, IsWritable: true},
		},
		Data: payload,
	}
}
