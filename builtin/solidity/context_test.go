// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(tcs.BytesToAddress([]byte("contract")), state.NewStater(db, 0).NewState())
}
