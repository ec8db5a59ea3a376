// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var (
	admin    = tcs.BytesToAddress([]byte("admin"))
	review   = tcs.BytesToAddress([]byte("review"))
	stranger = tcs.BytesToAddress([]byte("stranger"))
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := New(solidity.NewContext(tcs.RolesAddress, state.NewStater(db, 0).NewState()))
	require.NoError(t, svc.SetAdmin(tcs.Address{}, admin))
	return svc
}

func TestGrantRevoke(t *testing.T) {
	svc := newService(t)

	assert.ErrorIs(t, svc.Require(review, RoleDepositor), reverts.ErrPermission)

	assert.NoError(t, svc.Grant(admin, RoleDepositor, review))
	assert.NoError(t, svc.Grant(admin, RoleDepositor, review))
	assert.NoError(t, svc.Require(review, RoleDepositor))
	assert.ErrorIs(t, svc.Require(review, RoleOperator), reverts.ErrPermission)

	members, err := svc.Members(RoleDepositor)
	assert.NoError(t, err)
	assert.Equal(t, []tcs.Address{review}, members)

	assert.ErrorIs(t, svc.Grant(stranger, RoleDepositor, stranger), reverts.ErrPermission)
	assert.ErrorIs(t, svc.Revoke(stranger, RoleDepositor, review), reverts.ErrPermission)

	assert.NoError(t, svc.Revoke(admin, RoleDepositor, review))
	assert.ErrorIs(t, svc.Revoke(admin, RoleDepositor, review), reverts.ErrNotFound)
	assert.ErrorIs(t, svc.Require(review, RoleDepositor), reverts.ErrPermission)
}

func TestSetAdmin(t *testing.T) {
	svc := newService(t)

	assert.ErrorIs(t, svc.SetAdmin(stranger, stranger), reverts.ErrPermission)
	assert.NoError(t, svc.SetAdmin(admin, review))

	got, err := svc.Admin()
	assert.NoError(t, err)
	assert.Equal(t, review, got)
	assert.ErrorIs(t, svc.Grant(admin, RoleOperator, admin), reverts.ErrPermission)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("depositor")
	assert.NoError(t, err)
	assert.Equal(t, RoleDepositor, r)

	_, err = ParseRole("minter")
	assert.Error(t, err)
}
