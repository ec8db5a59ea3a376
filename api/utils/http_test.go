// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/transcranial/tcs/api/utils"
	"github.com/transcranial/tcs/builtin/staking/reverts"
)

func serve(f utils.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	utils.WrapHandlerFunc(f)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestWrapHandlerFunc(t *testing.T) {
	for _, tc := range []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{errors.New("boom"), http.StatusInternalServerError},
		{utils.BadRequest(errors.New("bad")), http.StatusBadRequest},
		{utils.Revert(pkgerrors.WithMessage(reverts.ErrPermission, "x")), http.StatusForbidden},
		{utils.Revert(reverts.ErrNotFound), http.StatusNotFound},
		{utils.Revert(reverts.ErrZeroSupply), http.StatusBadRequest},
		{utils.Revert(errors.New("disk")), http.StatusInternalServerError},
	} {
		rec := serve(func(http.ResponseWriter, *http.Request) error { return tc.err })
		assert.Equal(t, tc.status, rec.Code)
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, utils.ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, utils.ParseJSON(strings.NewReader(`{"b":1}`), &v))

	rec := httptest.NewRecorder()
	assert.NoError(t, utils.WriteJSON(rec, utils.M{"a": 2}))
	assert.Equal(t, utils.JSONContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":2}`, rec.Body.String())

	n, err := utils.ParseUint64("", 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), n)
	_, err = utils.ParseUint64("x", 7)
	assert.Error(t, err)
}
