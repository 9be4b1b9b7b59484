// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"github.com/ava-labs/avalanchego/ids"
)

// MaxCallDepth bounds the invocation stack, counting the root instruction
// frame as depth 1.
const MaxCallDepth = 4

type privilege struct {
	signer   bool
	writable bool
}

// callFrame is one level of the bounded invocation stack. It carries the
// privileges granted per address for the executing program. Privileges never
// outlive the frame: a programmatic signer grant is invisible to sibling and
// ancestor frames.
type callFrame struct {
	program ids.ID
	privs   map[ids.ID]privilege
	depth   int
	parent  *callFrame
}

// rootFrame grants privileges for a top-level instruction: an address is a
// signer only if the meta requests it and the transaction's verified signer
// set contains it, writable only if the meta declares it writable.
func rootFrame(instr *Instruction, signers map[ids.ID]struct{}) (*callFrame, error) {
	frame := &callFrame{
		program: instr.ProgramID,
		privs:   make(map[ids.ID]privilege, len(instr.Accounts)),
		depth:   1,
	}
	for _, meta := range instr.Accounts {
		signer := false
		if meta.IsSigner {
			if _, ok := signers[meta.Address]; !ok {
				return nil, ErrMissingSignature
			}
			signer = true
		}
		frame.privs[meta.Address] = mergePrivilege(frame.privs[meta.Address], privilege{
			signer:   signer,
			writable: meta.IsWritable,
		})
	}
	return frame, nil
}

// childFrame scopes privileges for a nested invocation issued by [parent]'s
// program. Writability never escalates: the child is writable for an address
// only if the parent was. Signer status propagates from the parent, or is
// granted fresh when a seed claim reconstructs the address under the
// invoking program's identity.
func childFrame(parent *callFrame, instr *Instruction, seedSigners map[ids.ID]struct{}) (*callFrame, error) {
	frame := &callFrame{
		program: instr.ProgramID,
		privs:   make(map[ids.ID]privilege, len(instr.Accounts)),
		depth:   parent.depth + 1,
		parent:  parent,
	}
	for _, meta := range instr.Accounts {
		parentPriv, known := parent.privs[meta.Address]
		_, seedSigned := seedSigners[meta.Address]
		if !known && !seedSigned {
			return nil, ErrAccountNotFound
		}
		frame.privs[meta.Address] = mergePrivilege(frame.privs[meta.Address], privilege{
			signer:   meta.IsSigner && (parentPriv.signer || seedSigned),
			writable: meta.IsWritable && parentPriv.writable,
		})
	}
	return frame, nil
}

// mergePrivilege combines grants when the same address appears in several
// account metas of one instruction.
func mergePrivilege(a, b privilege) privilege {
	return privilege{
		signer:   a.signer || b.signer,
		writable: a.writable || b.writable,
	}
}

func (f *callFrame) isSigner(addr ids.ID) bool {
	return f.privs[addr].signer
}

func (f *callFrame) isWritable(addr ids.ID) bool {
	return f.privs[addr].writable
}

func (f *callFrame) knows(addr ids.ID) bool {
	_, ok := f.privs[addr]
	return ok
}
