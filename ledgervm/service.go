// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledgervm

import (
	"encoding/hex"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/mr-tron/base58"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

// Name is the service namespace registered on the RPC server.
const Name = "ledgervm"

// Version is the release version of this module.
var Version = version.NewDefaultVersion(1, 0, 0)

// Service is the read-only query API over a running executor. It never
// mutates the store, the registry, or the rent policy; transaction
// submission arrives through a different boundary entirely.
type Service struct {
	executor *Executor
	store    *Store
}

// NewHandler returns an HTTP handler serving the query API with the JSON
// codec.
func NewHandler(executor *Executor, store *Store) (http.Handler, error) {
	newServer := rpc.NewServer()
	codec := cjson.NewCodec()
	newServer.RegisterCodec(codec, "application/json")
	newServer.RegisterCodec(codec, "application/json;charset=UTF-8")

	svc := &Service{executor: executor, store: store}
	return newServer, newServer.RegisterService(svc, Name)
}

// GetAccountArgs is an API request naming a single account.
type GetAccountArgs struct {
	// Address is the base58-encoded account address.
	Address string `json:"address"`
}

type GetAccountReply struct {
	Address    string       `json:"address"`
	Lamports   cjson.Uint64 `json:"lamports"`
	Owner      string       `json:"owner"`
	Data       string       `json:"data"` // hex-encoded
	Executable bool         `json:"executable"`
	RentEpoch  cjson.Uint64 `json:"rentEpoch"`
}

// GetAccount returns the committed record at [args.Address].
func (s *Service) GetAccount(_ *http.Request, args *GetAccountArgs, reply *GetAccountReply) error {
	addr, err := parseAddress(args.Address)
	if err != nil {
		return err
	}
	acct, err := s.store.GetAccount(addr)
	if err != nil {
		return err
	}

	reply.Address = base58.Encode(acct.Address[:])
	reply.Lamports = cjson.Uint64(acct.Lamports)
	reply.Owner = base58.Encode(acct.Owner[:])
	reply.Data = hex.EncodeToString(acct.Data)
	reply.Executable = acct.Executable
	reply.RentEpoch = cjson.Uint64(acct.RentEpoch)
	return nil
}

type MinBalanceArgs struct {
	DataLen cjson.Uint64 `json:"dataLen"`
}

type MinBalanceReply struct {
	MinBalance cjson.Uint64 `json:"minBalance"`
}

// MinBalance returns the rent-exempt minimum for an account of the given
// data length.
func (s *Service) MinBalance(_ *http.Request, args *MinBalanceArgs, reply *MinBalanceReply) error {
	reply.MinBalance = cjson.Uint64(s.executor.Rent().MinBalance(int(args.DataLen)))
	return nil
}

type DeriveAddressArgs struct {
	// Program is the base58-encoded program identity.
	Program string `json:"program"`
	// Seeds are hex-encoded seed byte strings, in order.
	Seeds []string `json:"seeds"`
}

type DeriveAddressReply struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

// DeriveAddress runs key-less address derivation for external tooling.
func (s *Service) DeriveAddress(_ *http.Request, args *DeriveAddressArgs, reply *DeriveAddressReply) error {
	program, err := parseAddress(args.Program)
	if err != nil {
		return err
	}
	seeds := make([][]byte, len(args.Seeds))
	for i, seedHex := range args.Seeds {
		if seeds[i], err = hex.DecodeString(seedHex); err != nil {
			return err
		}
	}
	derived, err := Derive(program, seeds)
	if err != nil {
		return err
	}
	reply.Address = base58.Encode(derived.Address[:])
	reply.Bump = derived.Bump
	return nil
}

type SchemaReply struct {
	// Tags maps registered type names to hex-encoded 8-byte tags.
	Tags map[string]string `json:"tags"`
}

// Schema exports the registry's name -> tag mapping.
func (s *Service) Schema(_ *http.Request, _ *struct{}, reply *SchemaReply) error {
	tags := s.executor.Registry().Tags()
	reply.Tags = make(map[string]string, len(tags))
	for name, tag := range tags {
		reply.Tags[name] = hex.EncodeToString(tag[:])
	}
	return nil
}

func parseAddress(encoded string) (ids.ID, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return ids.ID{}, err
	}
	return ids.ToID(raw)
}
