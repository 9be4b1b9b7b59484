// (c) 2024, Lamport Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey   = "version"
	httpAddrKey  = "http-addr"
	unitLimitKey = "unit-limit"
)

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("ledgervm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints version and quits")
	fs.String(httpAddrKey, ":9750", "Address the query API listens on")
	fs.Uint64(unitLimitKey, 200000, "Default per-transaction compute-unit limit")

	return fs
}

// getViper returns the viper environment for the binary
func getViper() (*viper.Viper, error) {
	v := viper.New()

	fs := buildFlagSet()
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	return v, nil
}

type params struct {
	printVersion bool
	httpAddr     string
	unitLimit    uint64
}

func loadParams() (params, error) {
	v, err := getViper()
	if err != nil {
		return params{}, err
	}

	return params{
		printVersion: v.GetBool(versionKey),
		httpAddr:     v.GetString(httpAddrKey),
		unitLimit:    v.GetUint64(unitLimitKey),
	}, nil
}
