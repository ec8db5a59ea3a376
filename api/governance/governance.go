// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package governance serves role membership, the admin and governance params.
package governance

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/transcranial/tcs/api/utils"
	"github.com/transcranial/tcs/builtin/params"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/tcs"
)

type RoleRequest struct {
	Caller  tcs.Address `json:"caller"`
	Address tcs.Address `json:"address"`
}

type AdminRequest struct {
	Caller tcs.Address `json:"caller"`
	Admin  tcs.Address `json:"admin"`
}

type ParamRequest struct {
	Caller tcs.Address           `json:"caller"`
	Value  *math.HexOrDecimal256 `json:"value"`
}

type Members struct {
	Role    roles.Role    `json:"role"`
	Members []tcs.Address `json:"members"`
}

var paramKeys = map[string]tcs.Bytes32{
	params.RewardDecimals.Name():    params.RewardDecimals.Slot(),
	params.IScorePerUnit.Name():     params.IScorePerUnit.Slot(),
	params.MinIScoreClaim.Name():    params.MinIScoreClaim.Slot(),
	params.UnstakeLockPeriod.Name(): params.UnstakeLockPeriod.Slot(),
}

type Governance struct {
	engine *engine.Engine
}

func New(eng *engine.Engine) *Governance {
	return &Governance{eng}
}

func parseRole(req *http.Request) (roles.Role, error) {
	role, err := roles.ParseRole(mux.Vars(req)["role"])
	if err != nil {
		return "", utils.NotFound(err)
	}
	return role, nil
}

func (g *Governance) handleGetMembers(w http.ResponseWriter, req *http.Request) error {
	role, err := parseRole(req)
	if err != nil {
		return err
	}
	members, err := g.engine.RoleMembers(role)
	if err != nil {
		return err
	}
	if members == nil {
		members = []tcs.Address{}
	}
	return utils.WriteJSON(w, &Members{role, members})
}

func (g *Governance) handleGrant(w http.ResponseWriter, req *http.Request) error {
	return g.changeRole(w, req, g.engine.GrantRole)
}

func (g *Governance) handleRevoke(w http.ResponseWriter, req *http.Request) error {
	return g.changeRole(w, req, g.engine.RevokeRole)
}

func (g *Governance) changeRole(w http.ResponseWriter, req *http.Request, change func(tcs.Address, roles.Role, tcs.Address) error) error {
	role, err := parseRole(req)
	if err != nil {
		return err
	}
	var body RoleRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := change(body.Caller, role, body.Address); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (g *Governance) handleGetAdmin(w http.ResponseWriter, _ *http.Request) error {
	admin, err := g.engine.Admin()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"admin": &admin})
}

func (g *Governance) handleSetAdmin(w http.ResponseWriter, req *http.Request) error {
	var body AdminRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Admin.IsZero() {
		return utils.BadRequest(errors.New("admin: required"))
	}
	if err := g.engine.SetAdmin(body.Caller, body.Admin); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (g *Governance) handleSetParam(w http.ResponseWriter, req *http.Request) error {
	key, ok := paramKeys[mux.Vars(req)["name"]]
	if !ok {
		return utils.NotFound(errors.Errorf("unknown param %q", mux.Vars(req)["name"]))
	}
	var body ParamRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Value == nil {
		return utils.BadRequest(errors.New("value: required"))
	}
	if err := g.engine.SetParam(body.Caller, key, (*big.Int)(body.Value)); err != nil {
		return utils.Revert(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (g *Governance) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/admin").
		Methods(http.MethodGet).
		Name("GET /governance/admin").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetAdmin))
	sub.Path("/admin").
		Methods(http.MethodPost).
		Name("POST /governance/admin").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetAdmin))
	sub.Path("/roles/{role}").
		Methods(http.MethodGet).
		Name("GET /governance/roles/{role}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetMembers))
	sub.Path("/roles/{role}/grant").
		Methods(http.MethodPost).
		Name("POST /governance/roles/{role}/grant").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGrant))
	sub.Path("/roles/{role}/revoke").
		Methods(http.MethodPost).
		Name("POST /governance/roles/{role}/revoke").
		HandlerFunc(utils.WrapHandlerFunc(g.handleRevoke))
	sub.Path("/params/{name}").
		Methods(http.MethodPost).
		Name("POST /governance/params/{name}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleSetParam))
}
