// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/builtin/funds"
	"github.com/transcranial/tcs/builtin/params"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var (
	admin    = tcs.BytesToAddress([]byte("admin"))
	review   = tcs.BytesToAddress([]byte("review"))
	stranger = tcs.BytesToAddress([]byte("stranger"))
	alice    = tcs.BytesToAddress([]byte("alice"))
	bob      = tcs.BytesToAddress([]byte("bob"))
	carol    = tcs.BytesToAddress([]byte("carol"))
)

type testEnv struct {
	state   *state.State
	staking *Staking
	roles   *roles.Service
	system  *funds.System
}

func newTestEnv(t *testing.T, lockPeriod uint64) *testEnv {
	return newTestEnvWithSource(t, lockPeriod, nil)
}

// newTestEnvWithSource builds the ledger; wrap may replace the funds source.
func newTestEnvWithSource(t *testing.T, lockPeriod uint64, wrap func(*funds.System) funds.Source) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 0).NewState()
	p := params.New(tcs.ParamsAddress, st)

	rs := roles.New(solidity.NewContext(tcs.RolesAddress, st))
	require.NoError(t, rs.SetAdmin(tcs.Address{}, admin))
	require.NoError(t, rs.Grant(admin, roles.RoleDepositor, review))

	system := funds.NewSystem(
		solidity.NewContext(tcs.SystemAddress, st),
		tcs.StakingAddress,
		st,
		funds.Config{IScorePerUnit: tcs.DefaultIScorePerUnit, UnstakeLockPeriod: lockPeriod},
	)
	var source funds.Source = system
	if wrap != nil {
		source = wrap(system)
	}

	staking, err := New(tcs.StakingAddress, st, p, rs, source)
	require.NoError(t, err)
	return &testEnv{st, staking, rs, system}
}

// fund credits the ledger's native balance, as value carried by a call.
func (env *testEnv) fund(t *testing.T, amount int64) {
	balance, err := env.state.GetBalance(tcs.StakingAddress)
	require.NoError(t, err)
	require.NoError(t, env.state.SetBalance(tcs.StakingAddress, new(big.Int).Add(balance, big.NewInt(amount))))
}

func (env *testEnv) balanceOf(t *testing.T, addr tcs.Address) *big.Int {
	balance, err := env.state.GetBalance(addr)
	require.NoError(t, err)
	return balance
}

func (env *testEnv) staked(t *testing.T, addr tcs.Address) *big.Int {
	balance, err := env.staking.StakedBalance(addr)
	require.NoError(t, err)
	return balance
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Deposit(account tcs.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.fund(t, amount)
		if err := st.env.staking.Deposit(review, account, big.NewInt(amount)); err != nil {
			t.Fatalf("failed to deposit %d for %s: %v", amount, account, err)
		}
		t.Logf("deposited %d for %s", amount, account)
	})
}

func (st *TestSequence) Income(amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.fund(t, amount)
		if _, err := st.env.staking.ClaimIncome(big.NewInt(amount)); err != nil {
			t.Fatalf("failed to distribute income %d: %v", amount, err)
		}
		t.Logf("distributed income %d", amount)
	})
}

func (st *TestSequence) Withdraw(account tcs.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		entry, err := st.env.staking.Withdraw(review, account, big.NewInt(amount))
		if err != nil {
			t.Fatalf("failed to withdraw %d for %s: %v", amount, account, err)
		}
		t.Logf("withdrew %d for %s, queued %s as #%d", amount, account, entry.Amount, entry.ID)
	})
}

func (st *TestSequence) Payout(expectedCount int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		paid, err := st.env.staking.PayoutFunds()
		if err != nil {
			t.Fatalf("failed to pay out: %v", err)
		}
		assert.Len(t, paid, expectedCount)
	})
}

func (st *TestSequence) AssertRewards(account tcs.Address, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		rewards, err := st.env.staking.QueryPendingRewards(account)
		require.NoError(t, err)
		assert.Equal(t, 0, big.NewInt(expected).Cmp(rewards), "pending rewards of %s: %v", account, rewards)
	})
}

func (st *TestSequence) AssertStaked(account tcs.Address, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		assert.Equal(t, 0, big.NewInt(expected).Cmp(st.env.staked(t, account)), "staked of %s", account)
	})
}

func (st *TestSequence) AssertQueue(expected ...int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		entries, err := st.env.staking.ListPayoutQueue()
		require.NoError(t, err)
		amounts := make([]int64, 0, len(entries))
		for _, e := range entries {
			amounts = append(amounts, e.Amount.Int64())
		}
		if len(expected) == 0 {
			assert.Empty(t, amounts)
			return
		}
		assert.Equal(t, expected, amounts)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}
