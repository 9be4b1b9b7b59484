// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

// TagLen is the width of the discriminator prefixed to every encoded
// account payload.
const TagLen = 8

// tagDomain prefixes the type name before hashing so account-type tags can
// never collide with other uses of the hash function.
const tagDomain = "account:"

var (
	errDuplicateType    = errors.New("type name already registered")
	errUnknownType      = errors.New("type name not registered")
	errFieldCount       = errors.New("field count does not match schema")
	errFieldType        = errors.New("field value does not match schema kind")
	errUnknownFieldKind = errors.New("unknown field kind")
)

// FieldKind identifies one positional field in a registered schema.
// Integers are fixed-width little-endian; Bytes and String carry a u32
// little-endian length prefix.
type FieldKind uint8

const (
	FieldU8 FieldKind = iota
	FieldU16
	FieldU32
	FieldU64
	FieldI64
	FieldBool
	FieldAddress
	FieldBytes
	FieldString
)

// Schema is the ordered field layout of one account type. Field names are
// never persisted; decoding is strictly positional.
type Schema []FieldKind

// fixedSize returns the encoded size of a fixed-width field, or 0 for
// variable-length kinds.
func (k FieldKind) fixedSize() int {
	switch k {
	case FieldU8, FieldBool:
		return 1
	case FieldU16:
		return 2
	case FieldU32:
		return 4
	case FieldU64, FieldI64:
		return 8
	case FieldAddress:
		return 32
	default:
		return 0
	}
}

// minSize returns the fewest payload bytes (excluding the tag) a value of
// this schema can occupy.
func (s Schema) minSize() int {
	size := 0
	for _, k := range s {
		if fixed := k.fixedSize(); fixed > 0 {
			size += fixed
		} else {
			size += 4 // length prefix of an empty variable field
		}
	}
	return size
}

type registeredType struct {
	name   string
	tag    [TagLen]byte
	schema Schema
}

// TypeRegistry maps structured account-type names to stable 8-byte tags and
// (de)serializes account payloads positionally. It is an explicit value
// handed to the executor, never a process-wide global; registration happens
// once at program-registration time and the registry is read-only afterward.
type TypeRegistry struct {
	byName map[string]*registeredType
	byTag  map[[TagLen]byte]*registeredType
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byName: make(map[string]*registeredType),
		byTag:  make(map[[TagLen]byte]*registeredType),
	}
}

// Tag derives the stable discriminator for [name]: the first 8 bytes of the
// hash of the domain-prefixed type name.
func Tag(name string) [TagLen]byte {
	var tag [TagLen]byte
	copy(tag[:], hashing.ComputeHash256([]byte(tagDomain+name)))
	return tag
}

// Register adds [name] with its positional [schema] and returns the type's
// tag.
func (r *TypeRegistry) Register(name string, schema Schema) ([TagLen]byte, error) {
	if _, ok := r.byName[name]; ok {
		return [TagLen]byte{}, fmt.Errorf("%w: %s", errDuplicateType, name)
	}
	for _, k := range schema {
		if k > FieldString {
			return [TagLen]byte{}, errUnknownFieldKind
		}
	}
	t := &registeredType{
		name:   name,
		tag:    Tag(name),
		schema: schema,
	}
	r.byName[name] = t
	r.byTag[t.tag] = t
	return t.tag, nil
}

// Tags exports a read-only copy of the name -> tag mapping for external
// tooling. The executor never writes through this view.
func (r *TypeRegistry) Tags() map[string][TagLen]byte {
	out := make(map[string][TagLen]byte, len(r.byName))
	for name, t := range r.byName {
		out[name] = t.tag
	}
	return out
}

// Encode serializes [fields] positionally under [name]'s tag. Field values
// must match the schema kinds in order: uint8, uint16, uint32, uint64,
// int64, bool, ids.ID, []byte, string.
func (r *TypeRegistry) Encode(name string, fields []interface{}) ([]byte, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownType, name)
	}
	if len(fields) != len(t.schema) {
		return nil, errFieldCount
	}

	raw := make([]byte, TagLen, TagLen+t.schema.minSize())
	copy(raw, t.tag[:])
	for i, kind := range t.schema {
		var err error
		raw, err = appendField(raw, kind, fields[i])
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
	}
	return raw, nil
}

// Decode checks the 8-byte tag against [name]'s registered tag and decodes
// the remaining bytes positionally. Trailing bytes beyond the schema are
// silently ignored: field names, exact length, and field types beyond byte
// width are intentionally not validated.
func (r *TypeRegistry) Decode(name string, raw []byte) ([]interface{}, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownType, name)
	}
	if len(raw) < TagLen {
		return nil, ErrAccountTooSmall
	}
	var tag [TagLen]byte
	copy(tag[:], raw)
	if tag != t.tag {
		return nil, ErrDiscriminatorMismatch
	}

	work := raw[TagLen:]
	fields := make([]interface{}, 0, len(t.schema))
	for _, kind := range t.schema {
		value, rest, err := readField(work, kind)
		if err != nil {
			return nil, err
		}
		fields = append(fields, value)
		work = rest
	}
	return fields, nil
}

func appendField(raw []byte, kind FieldKind, value interface{}) ([]byte, error) {
	switch kind {
	case FieldU8:
		v, ok := value.(uint8)
		if !ok {
			return nil, errFieldType
		}
		return append(raw, v), nil
	case FieldU16:
		v, ok := value.(uint16)
		if !ok {
			return nil, errFieldType
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], v)
		return append(raw, buf[:]...), nil
	case FieldU32:
		v, ok := value.(uint32)
		if !ok {
			return nil, errFieldType
		}
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], v)
		return append(raw, buf[:]...), nil
	case FieldU64:
		v, ok := value.(uint64)
		if !ok {
			return nil, errFieldType
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		return append(raw, buf[:]...), nil
	case FieldI64:
		v, ok := value.(int64)
		if !ok {
			return nil, errFieldType
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		return append(raw, buf[:]...), nil
	case FieldBool:
		v, ok := value.(bool)
		if !ok {
			return nil, errFieldType
		}
		b := byte(0)
		if v {
			b = 1
		}
		return append(raw, b), nil
	case FieldAddress:
		v, ok := value.(ids.ID)
		if !ok {
			return nil, errFieldType
		}
		return append(raw, v[:]...), nil
	case FieldBytes:
		v, ok := value.([]byte)
		if !ok {
			return nil, errFieldType
		}
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(len(v)))
		return append(append(raw, buf[:]...), v...), nil
	case FieldString:
		v, ok := value.(string)
		if !ok {
			return nil, errFieldType
		}
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(len(v)))
		return append(append(raw, buf[:]...), v...), nil
	default:
		return nil, errUnknownFieldKind
	}
}

func readField(work []byte, kind FieldKind) (interface{}, []byte, error) {
	if fixed := kind.fixedSize(); fixed > 0 {
		if len(work) < fixed {
			return nil, nil, ErrAccountTooSmall
		}
		var value interface{}
		switch kind {
		case FieldU8:
			value = work[0]
		case FieldU16:
			value = binary.LittleEndian.Uint16(work)
		case FieldU32:
			value = binary.LittleEndian.Uint32(work)
		case FieldU64:
			value = binary.LittleEndian.Uint64(work)
		case FieldI64:
			value = int64(binary.LittleEndian.Uint64(work))
		case FieldBool:
			value = work[0] != 0
		case FieldAddress:
			id := ids.ID{}
			copy(id[:], work[:32])
			value = id
		}
		return value, work[fixed:], nil
	}

	// Variable-length field: u32 little-endian length prefix.
	if len(work) < 4 {
		return nil, nil, ErrAccountTooSmall
	}
	length := binary.LittleEndian.Uint32(work)
	work = work[4:]
	if uint32(len(work)) < length {
		return nil, nil, ErrAccountTooSmall
	}
	body := work[:length]
	rest := work[length:]
	if kind == FieldString {
		return string(body), rest, nil
	}
	out := make([]byte, length)
	copy(out, body)
	return out, rest, nil
}
