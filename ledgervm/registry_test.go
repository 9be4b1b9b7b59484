// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/assert"
)

var escrowSchema = Schema{FieldU64, FieldAddress, FieldBool, FieldBytes}

func TestTagStability(t *testing.T) {
	assert := assert.New(t)

	// Tags are a pure function of the type name, stable across registries.
	assert.Equal(Tag("Escrow"), Tag("Escrow"))
	assert.NotEqual(Tag("Escrow"), Tag("Vault"))

	r1 := NewTypeRegistry()
	r2 := NewTypeRegistry()
	tag1, err := r1.Register("Escrow", escrowSchema)
	assert.NoError(err)
	tag2, err := r2.Register("Escrow", escrowSchema)
	assert.NoError(err)
	assert.Equal(tag1, tag2)
}

func TestRegisterDuplicate(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	_, err := r.Register("Escrow", escrowSchema)
	assert.NoError(err)
	_, err = r.Register("Escrow", escrowSchema)
	assert.Error(err)
}

func TestEncodeDecode(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	tag, err := r.Register("Escrow", escrowSchema)
	assert.NoError(err)

	authority := ids.ID{1, 2, 3}
	raw, err := r.Encode("Escrow", []interface{}{
		uint64(890880), authority, true, []byte{9, 9},
	})
	assert.NoError(err)
	assert.Equal(tag[:], raw[:TagLen])

	fields, err := r.Decode("Escrow", raw)
	assert.NoError(err)
	assert.Equal(uint64(890880), fields[0])
	assert.Equal(authority, fields[1])
	assert.Equal(true, fields[2])
	assert.Equal([]byte{9, 9}, fields[3])
}

func TestDecodeDiscriminatorMismatch(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	_, err := r.Register("Escrow", escrowSchema)
	assert.NoError(err)
	_, err = r.Register("Vault", Schema{FieldU64})
	assert.NoError(err)

	raw, err := r.Encode("Vault", []interface{}{uint64(7)})
	assert.NoError(err)

	_, err = r.Decode("Escrow", raw)
	assert.ErrorIs(err, ErrDiscriminatorMismatch)
}

func TestDecodeAccountTooSmall(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	_, err := r.Register("Escrow", escrowSchema)
	assert.NoError(err)

	raw, err := r.Encode("Escrow", []interface{}{
		uint64(1), ids.ID{}, false, []byte{},
	})
	assert.NoError(err)

	// Chopping anywhere inside the payload is AccountTooSmall; chopping
	// inside the tag is too.
	_, err = r.Decode("Escrow", raw[:len(raw)-1])
	assert.ErrorIs(err, ErrAccountTooSmall)
	_, err = r.Decode("Escrow", raw[:4])
	assert.ErrorIs(err, ErrAccountTooSmall)
}

// Trailing bytes beyond the schema are deliberately ignored: decoding is
// positional and lax about exact length.
func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	_, err := r.Register("Counter", Schema{FieldU64})
	assert.NoError(err)

	raw, err := r.Encode("Counter", []interface{}{uint64(5)})
	assert.NoError(err)
	raw = append(raw, 0xde, 0xad, 0xbe, 0xef)

	fields, err := r.Decode("Counter", raw)
	assert.NoError(err)
	assert.Equal(uint64(5), fields[0])
}

func TestEncodeRejectsMismatchedFields(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	_, err := r.Register("Counter", Schema{FieldU64})
	assert.NoError(err)

	_, err = r.Encode("Counter", []interface{}{uint32(5)})
	assert.Error(err)
	_, err = r.Encode("Counter", []interface{}{uint64(5), uint64(6)})
	assert.Error(err)
}

func TestTagsExport(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	tag, err := r.Register("Escrow", escrowSchema)
	assert.NoError(err)

	tags := r.Tags()
	assert.Equal(tag, tags["Escrow"])

	// The export is a copy; writing through it must not touch the registry.
	tags["Escrow"] = [TagLen]byte{}
	assert.Equal(tag, r.Tags()["Escrow"])
}

func TestStringAndIntegerFields(t *testing.T) {
	assert := assert.New(t)

	r := NewTypeRegistry()
	schema := Schema{FieldU8, FieldU16, FieldU32, FieldI64, FieldString}
	_, err := r.Register("Mixed", schema)
	assert.NoError(err)

	raw, err := r.Encode("Mixed", []interface{}{
		uint8(1), uint16(2), uint32(3), int64(-4), "hello",
	})
	assert.NoError(err)

	fields, err := r.Decode("Mixed", raw)
	assert.NoError(err)
	assert.Equal(uint8(1), fields[0])
	assert.Equal(uint16(2), fields[1])
	assert.Equal(uint32(3), fields[2])
	assert.Equal(int64(-4), fields[3])
	assert.Equal("hello", fields[4])
}
