// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package roles implements the allow-lists guarding ledger operations.
// A single admin grants and revokes roles; each role keeps its members in an
// indexed set so that members can be listed.
package roles

import (
	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/indexedset"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/tcs"
)

var (
	logger    = log.WithContext("pkg", "roles")
	slotAdmin = tcs.BytesToBytes32([]byte("admin"))
)

// Role names a permission.
type Role string

const (
	// RoleDepositor may deposit and withdraw on behalf of accounts.
	RoleDepositor Role = "depositor"
	// RoleOperator may change governance params.
	RoleOperator Role = "operator"
)

// All lists every known role.
var All = []Role{RoleDepositor, RoleOperator}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	for _, r := range All {
		if string(r) == s {
			return r, nil
		}
	}
	return "", errors.Errorf("unknown role %q", s)
}

// Service is the roles contract.
type Service struct {
	sctx  *solidity.Context
	admin *solidity.Address
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		sctx:  sctx,
		admin: solidity.NewAddress(sctx, slotAdmin),
	}
}

func (s *Service) members(role Role) *indexedset.Set[tcs.Address] {
	return indexedset.New[tcs.Address](s.sctx, tcs.Blake2b([]byte("role"), []byte(role)))
}

// Admin returns the admin address.
func (s *Service) Admin() (tcs.Address, error) {
	return s.admin.Get()
}

// SetAdmin replaces the admin. Only the current admin may call it once an admin is set.
func (s *Service) SetAdmin(caller, admin tcs.Address) error {
	current, err := s.admin.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() && current != caller {
		return errors.WithMessagef(reverts.ErrPermission, "%v is not admin", caller)
	}
	s.admin.Set(&admin)
	logger.Info("admin changed", "from", current, "to", admin)
	return nil
}

// Has reports whether addr holds role.
func (s *Service) Has(addr tcs.Address, role Role) (bool, error) {
	return s.members(role).Contains(addr)
}

// Require fails with reverts.ErrPermission unless addr holds role.
func (s *Service) Require(addr tcs.Address, role Role) error {
	ok, err := s.Has(addr, role)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(reverts.ErrPermission, "%v lacks role %s", addr, role)
	}
	return nil
}

func (s *Service) requireAdmin(caller tcs.Address) error {
	admin, err := s.admin.Get()
	if err != nil {
		return err
	}
	if admin.IsZero() || admin != caller {
		return errors.WithMessagef(reverts.ErrPermission, "%v is not admin", caller)
	}
	return nil
}

// Grant gives role to addr. Granting a held role is a no-op.
func (s *Service) Grant(caller tcs.Address, role Role, addr tcs.Address) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	added, err := s.members(role).Add(addr)
	if err != nil {
		return err
	}
	if added {
		logger.Info("role granted", "role", role, "addr", addr)
	}
	return nil
}

// Revoke takes role from addr.
func (s *Service) Revoke(caller tcs.Address, role Role, addr tcs.Address) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if err := s.members(role).Remove(addr); err != nil {
		return err
	}
	logger.Info("role revoked", "role", role, "addr", addr)
	return nil
}

// Members lists holders of role.
func (s *Service) Members(role Role) ([]tcs.Address, error) {
	return s.members(role).Members()
}
