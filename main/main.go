// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"net/http"
	"os"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/memdb"

	"github.com/lamport-labs/ledgervm/ledgervm"
)

func main() {
	p, err := loadParams()
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if p.printVersion {
		fmt.Printf("%s@%s\n", ledgervm.Name, ledgervm.Version)
		os.Exit(0)
	}

	store := ledgervm.NewStore(memdb.New())
	executor := ledgervm.NewExecutor(store, ledgervm.NewTypeRegistry())

	handler, err := ledgervm.NewHandler(executor, store)
	if err != nil {
		log.Error("couldn't create query handler", "err", err)
		os.Exit(1)
	}

	log.Info("serving ledgervm query API",
		"addr", p.httpAddr,
		"defaultUnitLimit", p.unitLimit,
	)
	if err := http.ListenAndServe(p.httpAddr, handler); err != nil {
		log.Error("server returned an error", "err", err)
		os.Exit(1)
	}
}
