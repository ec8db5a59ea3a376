// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/transcranial/tcs/badgerdb"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/genesis"
	"github.com/transcranial/tcs/kv"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/logdb"
	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	return log.Init(os.Stderr, ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	gen, err := genesis.Load(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "load genesis [%v]", path)
	}
	return gen, nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (kv.StoreCloser, error) {
	switch name := ctx.String(dbEngineFlag.Name); name {
	case "leveldb":
		dir := filepath.Join(dataDir, "main.db")
		db, err := lvldb.New(dir, lvldb.Options{
			CacheSize:              ctx.Int(cacheFlag.Name),
			OpenFilesCacheCapacity: 64,
		})
		if err != nil {
			return nil, errors.WithMessagef(err, "open ledger database [%v]", dir)
		}
		return db, nil
	case "badger":
		dir := filepath.Join(dataDir, "main.badger")
		db, err := badgerdb.New(dir)
		if err != nil {
			return nil, errors.WithMessagef(err, "open ledger database [%v]", dir)
		}
		return db, nil
	default:
		return nil, errors.Errorf("unsupported db engine %q", name)
	}
}

func openMemMainDB(ctx *cli.Context) (kv.StoreCloser, error) {
	switch name := ctx.String(dbEngineFlag.Name); name {
	case "leveldb":
		db, err := lvldb.NewMem()
		if err != nil {
			return nil, err
		}
		return db, nil
	case "badger":
		db, err := badgerdb.NewMem()
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.Errorf("unsupported db engine %q", name)
	}
}

func openLogDB(dataDir string) (*logdb.LogDB, error) {
	path := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "open log database [%v]", path)
	}
	return db, nil
}

// ledger bundles the databases and the engine over them.
type ledger struct {
	dataDir string
	mainDB  kv.StoreCloser
	logDB   *logdb.LogDB
	engine  *engine.Engine
}

// openLedger opens the databases, writes the genesis into a fresh store and
// creates the engine.
func openLedger(ctx *cli.Context, persist bool) (_ *ledger, err error) {
	gen, err := selectGenesis(ctx)
	if err != nil {
		return nil, err
	}

	l := &ledger{dataDir: "Memory"}
	defer func() {
		if err != nil {
			l.Close()
		}
	}()

	if persist {
		if l.dataDir, err = makeDataDir(ctx); err != nil {
			return nil, err
		}
		if l.mainDB, err = openMainDB(ctx, l.dataDir); err != nil {
			return nil, err
		}
		if l.logDB, err = openLogDB(l.dataDir); err != nil {
			return nil, err
		}
	} else {
		if l.mainDB, err = openMemMainDB(ctx); err != nil {
			return nil, err
		}
		if l.logDB, err = logdb.NewMem(); err != nil {
			return nil, err
		}
	}

	stater := state.NewStater(l.mainDB, 0)
	applied, err := gen.Apply(stater)
	if err != nil {
		return nil, errors.WithMessage(err, "apply genesis")
	}
	if applied {
		log.Info("genesis applied", "admin", gen.Admin, "accounts", len(gen.Accounts))
	}
	l.engine = engine.New(stater, l.logDB)
	return l, nil
}

func (l *ledger) Close() {
	if l.logDB != nil {
		log.Debug("closing log database...")
		if err := l.logDB.Close(); err != nil {
			log.Warn("failed to close log database", "err", err)
		}
	}
	if l.mainDB != nil {
		log.Debug("closing main database...")
		if err := l.mainDB.Close(); err != nil {
			log.Warn("failed to close main database", "err", err)
		}
	}
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// parseAddress parses the value of an address flag, falling back to def when unset.
func parseAddress(ctx *cli.Context, flag cli.StringFlag, def tcs.Address) (tcs.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return def, nil
	}
	addr, err := tcs.ParseAddress(s)
	if err != nil {
		return tcs.Address{}, errors.WithMessagef(err, "invalid -%s", flag.Name)
	}
	return *addr, nil
}

func parseAmount(ctx *cli.Context) (*big.Int, error) {
	s := ctx.String(amountFlag.Name)
	if s == "" {
		return nil, errors.Errorf("-%s is required", amountFlag.Name)
	}
	var amount math.HexOrDecimal256
	if err := amount.UnmarshalText([]byte(s)); err != nil {
		return nil, errors.WithMessagef(err, "invalid -%s", amountFlag.Name)
	}
	return (*big.Int)(&amount), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.tcs")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.tcs")
		}
		return filepath.Join(home, ".org.tcs")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
