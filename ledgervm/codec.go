// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	// CodecVersion is the current default codec version
	CodecVersion = 0
)

// Codec (de)serializes transactions at the network/codec boundary.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()

	errs := wrappers.Errs{}

	errs.Add(
		c.RegisterType(&Transaction{}),
	)

	errs.Add(
		Codec.RegisterCodec(CodecVersion, c),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}

// MarshalTransaction returns the wire bytes of [tx].
func MarshalTransaction(tx *Transaction) ([]byte, error) {
	return Codec.Marshal(CodecVersion, tx)
}

// ParseTransaction parses wire bytes produced by MarshalTransaction.
func ParseTransaction(raw []byte) (*Transaction, error) {
	tx := &Transaction{}
	if _, err := Codec.Unmarshal(raw, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
