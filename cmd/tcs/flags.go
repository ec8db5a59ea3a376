// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	dbEngineFlag = cli.StringFlag{
		Name:  "db-engine",
		Value: "leveldb",
		Usage: "key-value engine for ledger state (leveldb|badger)",
	}
	persistFlag = cli.BoolTFlag{
		Name:  "persist",
		Usage: "keep ledger data in data-dir, set to false for an in-memory ledger",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis file in YAML, the dev genesis is used when omitted",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "megabytes of RAM allocated to the leveldb cache",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of history rows returned by one API call",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "serve the log level endpoint under /admin",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5, crit to trace)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	// command flags
	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "address the operation is performed as, defaults to the first dev account",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account the operation applies to, defaults to the caller",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in base units, decimal or 0x prefixed hex",
	}
)

// storeFlags select and open the ledger databases.
var storeFlags = []cli.Flag{
	dataDirFlag,
	dbEngineFlag,
	genesisFlag,
	cacheFlag,
	verbosityFlag,
	jsonLogsFlag,
}
