package client

import (
	"encoding/hex"
	"time"

	"github.com/mr-tron/base58"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/rpc"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/lamport-labs/ledgervm/ledgervm"
)

// Client defines ledgervm query client operations.
type Client interface {
	// GetAccount fetches the committed account record at [addr]
	GetAccount(addr ids.ID) (*ledgervm.Account, error)

	// MinBalance returns the rent-exempt minimum for [dataLen] bytes
	MinBalance(dataLen int) (uint64, error)

	// DeriveAddress derives the key-less address for [program] and [seeds]
	DeriveAddress(program ids.ID, seeds [][]byte) (ledgervm.DerivedAddress, error)

	// Schema fetches the registered type name -> tag mapping
	Schema() (map[string][ledgervm.TagLen]byte, error)
}

// New creates a new client object.
func New(uri string, requestTimeout time.Duration) Client {
	req := rpc.NewEndpointRequester(uri, "/", ledgervm.Name, requestTimeout)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) GetAccount(addr ids.ID) (*ledgervm.Account, error) {
	resp := new(ledgervm.GetAccountReply)
	err := cli.req.SendRequest(
		"getAccount",
		&ledgervm.GetAccountArgs{Address: base58.Encode(addr[:])},
		resp,
	)
	if err != nil {
		return nil, err
	}

	owner, err := base58.Decode(resp.Owner)
	if err != nil {
		return nil, err
	}
	ownerID, err := ids.ToID(owner)
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(resp.Data)
	if err != nil {
		return nil, err
	}
	return &ledgervm.Account{
		Address:    addr,
		Lamports:   uint64(resp.Lamports),
		Owner:      ownerID,
		Data:       data,
		Executable: resp.Executable,
		RentEpoch:  uint64(resp.RentEpoch),
	}, nil
}

func (cli *client) MinBalance(dataLen int) (uint64, error) {
	resp := new(ledgervm.MinBalanceReply)
	err := cli.req.SendRequest(
		"minBalance",
		&ledgervm.MinBalanceArgs{DataLen: cjson.Uint64(dataLen)},
		resp,
	)
	if err != nil {
		return 0, err
	}
	return uint64(resp.MinBalance), nil
}

func (cli *client) DeriveAddress(program ids.ID, seeds [][]byte) (ledgervm.DerivedAddress, error) {
	seedArgs := make([]string, len(seeds))
	for i, seed := range seeds {
		seedArgs[i] = hex.EncodeToString(seed)
	}

	resp := new(ledgervm.DeriveAddressReply)
	err := cli.req.SendRequest(
		"deriveAddress",
		&ledgervm.DeriveAddressArgs{
			Program: base58.Encode(program[:]),
			Seeds:   seedArgs,
		},
		resp,
	)
	if err != nil {
		return ledgervm.DerivedAddress{}, err
	}

	raw, err := base58.Decode(resp.Address)
	if err != nil {
		return ledgervm.DerivedAddress{}, err
	}
	addr, err := ids.ToID(raw)
	if err != nil {
		return ledgervm.DerivedAddress{}, err
	}
	return ledgervm.DerivedAddress{Address: addr, Bump: resp.Bump}, nil
}

func (cli *client) Schema() (map[string][ledgervm.TagLen]byte, error) {
	resp := new(ledgervm.SchemaReply)
	if err := cli.req.SendRequest("schema", &struct{}{}, resp); err != nil {
		return nil, err
	}

	tags := make(map[string][ledgervm.TagLen]byte, len(resp.Tags))
	for name, tagHex := range resp.Tags {
		raw, err := hex.DecodeString(tagHex)
		if err != nil {
			return nil, err
		}
		var tag [ledgervm.TagLen]byte
		copy(tag[:], raw)
		tags[name] = tag
	}
	return tags, nil
}
