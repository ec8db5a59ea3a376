// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/tcs"
)

// ConfigVariable is a uint64 setting stored in the slot derived from its name,
// falling back to a default value when the slot is unset or out of range.
type ConfigVariable struct {
	slot         tcs.Bytes32
	name         string
	defaultValue uint64
}

func NewConfigVariable(name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		slot:         tcs.BytesToBytes32([]byte(name)),
		name:         name,
		defaultValue: defaultValue,
	}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() tcs.Bytes32 {
	return c.slot
}

func (c *ConfigVariable) Default() uint64 {
	return c.defaultValue
}

// Get reads the value from the storage of ctx.
func (c *ConfigVariable) Get(ctx *Context) (uint64, error) {
	storage, err := ctx.state.GetStorage(ctx.address, c.slot)
	if err != nil {
		return 0, err
	}
	num := new(big.Int).SetBytes(storage.Bytes())
	if num.Sign() == 0 || !num.IsUint64() {
		log.Debug("using default config value", "slot", c.name, "value", c.defaultValue)
		return c.defaultValue, nil
	}
	return num.Uint64(), nil
}
