// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"fmt"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/ids"
)

// Status is the transaction state machine. Committed and Aborted are
// terminal.
type Status uint8

const (
	StatusPending Status = iota
	StatusRunning
	StatusCommitted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCommitted:
		return "committed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// TxError is the single terminal error a failed transaction surfaces: the
// underlying cause plus the identity and depth of the frame that raised it.
type TxError struct {
	Err     error
	Program ids.ID
	Depth   int
}

func (e *TxError) Error() string {
	return fmt.Sprintf("program %s (depth %d): %s", e.Program, e.Depth, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// Receipt reports the outcome of one transaction.
type Receipt struct {
	Status        Status
	UnitsConsumed uint64
}

// Program is a native program implementation invoked by identity. Execution
// must be deterministic: identical inputs produce identical outputs and
// identical error classification.
type Program interface {
	Execute(ctx *InvokeContext) error
}

// ProgramFunc adapts a plain function to the Program interface.
type ProgramFunc func(ctx *InvokeContext) error

func (f ProgramFunc) Execute(ctx *InvokeContext) error { return f(ctx) }

// Executor runs transactions against a Store: ordered instructions, bounded
// nested invocation with scoped privileges, immediate authorization checks,
// rent gating at frame boundaries, and all-or-nothing commit.
//
// Execution is single-threaded and synchronous. The caller is responsible
// for isolation across transactions: exclusive locks on every address any
// instruction declares writable, shared locks on the rest, held for the full
// duration. The executor performs no locking itself.
type Executor struct {
	store    *Store
	registry *TypeRegistry
	rent     RentPolicy
	programs map[ids.ID]Program
}

func NewExecutor(store *Store, registry *TypeRegistry) *Executor {
	e := &Executor{
		store:    store,
		registry: registry,
		rent:     NewRentPolicy(),
		programs: make(map[ids.ID]Program),
	}
	e.programs[SystemIdentity] = ProgramFunc(runSystemProgram)
	return e
}

// RegisterProgram installs a native [program] under [identity] and
// materializes its executable marker record in the committed store.
// Registration happens at setup time, never during transaction execution.
func (e *Executor) RegisterProgram(identity ids.ID, program Program) error {
	if _, ok := e.programs[identity]; ok {
		return fmt.Errorf("program %s already registered", identity)
	}
	e.programs[identity] = program
	return e.store.PutAccount(&Account{
		Address:    identity,
		Lamports:   e.rent.MinBalance(0),
		Owner:      SystemIdentity,
		Executable: true,
	})
}

// Registry exposes the executor's type registry for external tooling. The
// executor itself never writes to it.
func (e *Executor) Registry() *TypeRegistry { return e.registry }

// Rent exposes the rent policy used at frame boundaries.
func (e *Executor) Rent() RentPolicy { return e.rent }

// Execute runs [tx] to completion. On success every working-copy change is
// committed atomically; on any failure no effect is observable and the
// returned error carries the originating frame's identity.
func (e *Executor) Execute(tx *Transaction, costs CostTable) (*Receipt, error) {
	if costs == nil {
		costs = DefaultCostTable()
	}
	run := &execRun{
		executor: e,
		scratch:  newTxState(e.store, e.rent),
		meter:    newComputeMeter(tx.UnitLimit),
		costs:    costs,
		signers:  tx.signerSet(),
	}
	receipt := &Receipt{Status: StatusRunning}

	for i := range tx.Instructions {
		instr := &tx.Instructions[i]
		if err := run.runRoot(instr); err != nil {
			return run.abort(receipt, err)
		}
		// Rent gate at the top-level frame boundary.
		if err := run.scratch.checkRent(); err != nil {
			return run.abort(receipt, run.wrap(instr.ProgramID, 1, err))
		}
	}

	// The gate is a precondition of commit, checked once more so no later
	// mutation slips past it.
	if err := run.scratch.checkRent(); err != nil {
		return run.abort(receipt, run.wrap(SystemIdentity, 0, err))
	}
	if err := run.scratch.commit(); err != nil {
		return run.abort(receipt, run.wrap(SystemIdentity, 0, err))
	}

	receipt.Status = StatusCommitted
	receipt.UnitsConsumed = tx.UnitLimit - run.meter.remaining
	log.Debug("transaction committed",
		"instructions", len(tx.Instructions),
		"unitsConsumed", receipt.UnitsConsumed,
	)
	return receipt, nil
}

// execRun is the per-transaction execution state.
type execRun struct {
	executor *Executor
	scratch  *txState
	meter    *computeMeter
	costs    CostTable
	signers  map[ids.ID]struct{}
	stack    []*callFrame
}

func (r *execRun) abort(receipt *Receipt, err error) (*Receipt, error) {
	r.scratch.abort()
	receipt.Status = StatusAborted
	log.Debug("transaction aborted", "err", err)
	return receipt, err
}

// wrap attaches frame provenance to [err] unless it already carries some.
func (r *execRun) wrap(program ids.ID, depth int, err error) error {
	if _, ok := err.(*TxError); ok {
		return err
	}
	return &TxError{Err: err, Program: program, Depth: depth}
}

func (r *execRun) runRoot(instr *Instruction) error {
	frame, err := rootFrame(instr, r.signers)
	if err != nil {
		return r.wrap(instr.ProgramID, 1, err)
	}
	return r.runFrame(frame, instr)
}

func (r *execRun) runFrame(frame *callFrame, instr *Instruction) error {
	if frame.depth > MaxCallDepth {
		return r.wrap(frame.program, frame.depth, ErrCallDepthExceeded)
	}
	program, ok := r.executor.programs[instr.ProgramID]
	if !ok {
		return r.wrap(frame.program, frame.depth, ErrUnknownProgram)
	}
	if err := r.meter.consume(r.costs[OpInvoke]); err != nil {
		return r.wrap(frame.program, frame.depth, err)
	}

	r.stack = append(r.stack, frame)
	err := program.Execute(&InvokeContext{run: r, frame: frame, instr: instr})
	r.stack = r.stack[:len(r.stack)-1]

	if err != nil {
		return r.wrap(frame.program, frame.depth, err)
	}
	return nil
}

// InvokeContext is the interface a program sees while it executes: its frame
// privileges, gated store operations acting under the program's identity,
// payload decoding, and nested invocation. Every mutation is authorization
// checked at the point of call; the first failure anywhere in the stack is
// terminal for the whole transaction.
type InvokeContext struct {
	run   *execRun
	frame *callFrame
	instr *Instruction
}

// Program returns the identity executing this frame.
func (c *InvokeContext) Program() ids.ID { return c.frame.program }

// Instruction returns the instruction being executed.
func (c *InvokeContext) Instruction() *Instruction { return c.instr }

// IsSigner reports whether [addr] holds signer privilege in this frame.
func (c *InvokeContext) IsSigner(addr ids.ID) bool { return c.frame.isSigner(addr) }

// IsWritable reports whether [addr] holds writable privilege in this frame.
func (c *InvokeContext) IsWritable(addr ids.ID) bool { return c.frame.isWritable(addr) }

// Account returns a copy of [addr]'s current working-copy record. The
// address must be granted to this frame.
func (c *InvokeContext) Account(addr ids.ID) (*Account, error) {
	if !c.frame.knows(addr) {
		return nil, ErrAccountNotFound
	}
	return c.run.scratch.getAccount(addr)
}

// Registry returns the read-only type registry.
func (c *InvokeContext) Registry() *TypeRegistry { return c.run.executor.registry }

// DecodeAccount reads [addr]'s data as a registered [typeName] value,
// checking the discriminator tag first.
func (c *InvokeContext) DecodeAccount(typeName string, addr ids.ID) ([]interface{}, error) {
	if err := c.consume(OpDecode); err != nil {
		return nil, err
	}
	acct, err := c.Account(addr)
	if err != nil {
		return nil, err
	}
	return c.run.executor.registry.Decode(typeName, acct.Data)
}

// Create materializes a fresh account at [addr]. The frame must hold
// writable privilege for [addr].
func (c *InvokeContext) Create(addr ids.ID, owner ids.ID, lamports uint64, dataLen int) error {
	if err := c.mutable(addr, OpCreate); err != nil {
		return err
	}
	return c.run.scratch.Create(addr, owner, lamports, dataLen)
}

// Write replaces [addr]'s data, acting as this frame's program.
func (c *InvokeContext) Write(addr ids.ID, newData []byte) error {
	if err := c.mutable(addr, OpWrite); err != nil {
		return err
	}
	return c.run.scratch.Write(addr, c.frame.program, newData)
}

// Debit reduces [addr]'s balance, acting as this frame's program.
func (c *InvokeContext) Debit(addr ids.ID, amount uint64) error {
	if err := c.mutable(addr, OpDebit); err != nil {
		return err
	}
	return c.run.scratch.Debit(addr, c.frame.program, amount)
}

// Credit increases [addr]'s balance. Unauthenticated at the store level, but
// the frame must still hold writable privilege for the target.
func (c *InvokeContext) Credit(addr ids.ID, amount uint64) error {
	if err := c.mutable(addr, OpCredit); err != nil {
		return err
	}
	return c.run.scratch.Credit(addr, amount)
}

// Assign hands ownership of [addr] to [newOwner], acting as this frame's
// program.
func (c *InvokeContext) Assign(addr ids.ID, newOwner ids.ID) error {
	if err := c.mutable(addr, OpAssign); err != nil {
		return err
	}
	return c.run.scratch.Assign(addr, c.frame.program, newOwner)
}

// Close drains [addr] into [beneficiary], clears its data, and returns it to
// the system identity, acting as this frame's program.
func (c *InvokeContext) Close(addr ids.ID, beneficiary ids.ID) error {
	if err := c.mutable(addr, OpClose); err != nil {
		return err
	}
	if !c.frame.isWritable(beneficiary) {
		return ErrUnauthorized
	}
	return c.run.scratch.Close(addr, c.frame.program, beneficiary)
}

// DeriveAddress meters and runs address derivation under this frame's
// program identity.
func (c *InvokeContext) DeriveAddress(seeds [][]byte) (DerivedAddress, error) {
	if err := c.consume(OpDerive); err != nil {
		return DerivedAddress{}, err
	}
	return Derive(c.frame.program, seeds)
}

// Invoke issues a nested instruction from within this frame. [signerSeeds]
// are programmatic signing claims verified against the invoking program's
// identity; a valid claim grants signer status for the reconstructed address
// scoped to the child frame only.
func (c *InvokeContext) Invoke(instr *Instruction, signerSeeds []SignerSeeds) error {
	seedSigners := make(map[ids.ID]struct{}, len(signerSeeds))
	for _, claim := range signerSeeds {
		addr, err := Reconstruct(c.frame.program, claim.Seeds, claim.Bump)
		if err != nil {
			return err
		}
		seedSigners[addr] = struct{}{}
	}
	frame, err := childFrame(c.frame, instr, seedSigners)
	if err != nil {
		return c.run.wrap(c.frame.program, c.frame.depth, err)
	}
	return c.run.runFrame(frame, instr)
}

// mutable gates every mutation: the target must be granted writable in this
// frame, and the operation's cost is charged before it runs.
func (c *InvokeContext) mutable(addr ids.ID, op OpCode) error {
	if !c.frame.isWritable(addr) {
		return ErrUnauthorized
	}
	return c.consume(op)
}

func (c *InvokeContext) consume(op OpCode) error {
	return c.run.meter.consume(c.run.costs[op])
}
