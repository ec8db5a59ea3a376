// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial ledger state: the roles admin,
// role holders, native balances and governance params.
package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/transcranial/tcs/builtin/params"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var logger = log.WithContext("pkg", "genesis")

// Genesis is the user supplied initial state.
type Genesis struct {
	Admin      tcs.Address   `yaml:"admin"`
	Depositors []tcs.Address `yaml:"depositors"`
	Operators  []tcs.Address `yaml:"operators"`
	Accounts   []Account     `yaml:"accounts"`
	Params     Params        `yaml:"params"`
}

// Account is a native balance allocated at genesis.
type Account struct {
	Address tcs.Address           `yaml:"address"`
	Balance *math.HexOrDecimal256 `yaml:"balance"`
}

// Params overrides governance params. Nil keeps the default.
type Params struct {
	RewardDecimals    *uint64 `yaml:"rewardDecimals"`
	IScorePerUnit     *uint64 `yaml:"iscorePerUnit"`
	MinIScoreClaim    *uint64 `yaml:"minIScoreClaim"`
	UnstakeLockPeriod *uint64 `yaml:"unstakeLockPeriod"`
}

// Load reads a yaml genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses yaml genesis data. Unknown fields are rejected.
func Decode(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis is self-consistent.
func (g *Genesis) Validate() error {
	if g.Admin.IsZero() {
		return errors.New("admin must be set")
	}
	seen := make(map[tcs.Address]bool)
	for _, a := range g.Accounts {
		if a.Balance == nil {
			return fmt.Errorf("%s: balance must be set", a.Address)
		}
		if (*big.Int)(a.Balance).Sign() < 1 {
			return fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
		if seen[a.Address] {
			return fmt.Errorf("%s: duplicated account", a.Address)
		}
		seen[a.Address] = true
	}
	if d := g.Params.RewardDecimals; d != nil && *d > tcs.MaxRewardDecimals {
		return fmt.Errorf("rewardDecimals must not exceed %d", tcs.MaxRewardDecimals)
	}
	if p := g.Params.IScorePerUnit; p != nil && *p == 0 {
		return errors.New("iscorePerUnit must be a non-zero integer")
	}
	return nil
}

// Apply writes the genesis into an empty store. It returns false when the
// store was initialized before, leaving it untouched.
func (g *Genesis) Apply(stater *state.Stater) (bool, error) {
	st := stater.NewState()
	rs := roles.New(solidity.NewContext(tcs.RolesAddress, st))

	admin, err := rs.Admin()
	if err != nil {
		return false, err
	}
	if !admin.IsZero() {
		logger.Debug("genesis already applied", "admin", admin)
		return false, nil
	}

	for _, a := range g.Accounts {
		if err := st.SetBalance(a.Address, (*big.Int)(a.Balance)); err != nil {
			return false, err
		}
	}

	p := params.New(tcs.ParamsAddress, st)
	for _, kv := range []struct {
		v     *solidity.ConfigVariable
		value *uint64
	}{
		{params.RewardDecimals, g.Params.RewardDecimals},
		{params.IScorePerUnit, g.Params.IScorePerUnit},
		{params.MinIScoreClaim, g.Params.MinIScoreClaim},
		{params.UnstakeLockPeriod, g.Params.UnstakeLockPeriod},
	} {
		if kv.value == nil {
			continue
		}
		if err := p.Set(kv.v.Slot(), new(big.Int).SetUint64(*kv.value)); err != nil {
			return false, errors.WithMessage(err, kv.v.Name())
		}
	}

	if err := rs.SetAdmin(tcs.Address{}, g.Admin); err != nil {
		return false, err
	}
	for _, addr := range g.Depositors {
		if err := rs.Grant(g.Admin, roles.RoleDepositor, addr); err != nil {
			return false, err
		}
	}
	for _, addr := range g.Operators {
		if err := rs.Grant(g.Admin, roles.RoleOperator, addr); err != nil {
			return false, err
		}
	}

	if err := st.Stage().Commit(); err != nil {
		return false, errors.Wrap(err, "commit genesis")
	}
	logger.Info("genesis applied", "admin", g.Admin, "accounts", len(g.Accounts))
	return true, nil
}
