// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governance_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/api/governance"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/genesis"
	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var (
	admin    = tcs.BytesToAddress([]byte("admin"))
	operator = tcs.BytesToAddress([]byte("operator"))
	alice    = tcs.BytesToAddress([]byte("alice"))
)

func newRouter(t *testing.T) (*mux.Router, *engine.Engine) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stater := state.NewStater(db, 0)
	gen := &genesis.Genesis{Admin: admin, Operators: []tcs.Address{operator}}
	_, err = gen.Apply(stater)
	require.NoError(t, err)

	eng := engine.New(stater, nil)
	router := mux.NewRouter()
	governance.New(eng).Mount(router, "/governance")
	return router, eng
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewReader(data)))
	return rec
}

func TestRoles(t *testing.T) {
	router, eng := newRouter(t)

	rec := do(t, router, http.MethodPost, "/governance/roles/depositor/grant", governance.RoleRequest{Caller: alice, Address: alice})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodPost, "/governance/roles/depositor/grant", governance.RoleRequest{Caller: admin, Address: alice})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/governance/roles/depositor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members governance.Members
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Equal(t, roles.RoleDepositor, members.Role)
	assert.Equal(t, []tcs.Address{alice}, members.Members)

	rec = do(t, router, http.MethodPost, "/governance/roles/depositor/revoke", governance.RoleRequest{Caller: admin, Address: alice})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/governance/roles/depositor/revoke", governance.RoleRequest{Caller: admin, Address: alice})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/governance/roles/minter", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/governance/roles/depositor", nil)
	assert.JSONEq(t, `{"role":"depositor","members":[]}`, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/governance/admin", governance.AdminRequest{Caller: admin, Admin: alice})
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := eng.Admin()
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	rec = do(t, router, http.MethodGet, "/governance/admin", nil)
	assert.JSONEq(t, `{"admin":"`+alice.String()+`"}`, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/governance/admin", governance.AdminRequest{Caller: alice})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParams(t *testing.T) {
	router, eng := newRouter(t)

	value := math.NewHexOrDecimal256(2000)
	rec := do(t, router, http.MethodPost, "/governance/params/min-iscore-claim", governance.ParamRequest{Caller: alice, Value: value})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodPost, "/governance/params/min-iscore-claim", governance.ParamRequest{Caller: operator, Value: value})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/governance/params/reward-decimals", governance.ParamRequest{Caller: operator, Value: value})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodPost, "/governance/params/nope", governance.ParamRequest{Caller: operator, Value: value})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/governance/params/min-iscore-claim", governance.ParamRequest{Caller: operator})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	status, err := eng.Status()
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), status.Params["min-iscore-claim"])
}
