// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/api/staking"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/genesis"
	"github.com/transcranial/tcs/logdb"
	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var (
	admin  = tcs.BytesToAddress([]byte("admin"))
	review = tcs.BytesToAddress([]byte("review"))
	alice  = tcs.BytesToAddress([]byte("alice"))
	bob    = tcs.BytesToAddress([]byte("bob"))
)

func newEngine(t *testing.T) *engine.Engine {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	stater := state.NewStater(db, 0)
	gen := &genesis.Genesis{
		Admin:      admin,
		Depositors: []tcs.Address{review},
		Operators:  []tcs.Address{admin},
		Accounts: []genesis.Account{
			{Address: review, Balance: (*math.HexOrDecimal256)(big.NewInt(1000))},
		},
	}
	_, err = gen.Apply(stater)
	require.NoError(t, err)
	return engine.New(stater, logDB)
}

func newServer(t *testing.T, eng *engine.Engine) (*httptest.Server, *Subscriptions) {
	subs := New(eng, nil)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, subs
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPayout(t *testing.T, conn *websocket.Conn) *staking.Payout {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var p staking.Payout
	require.NoError(t, conn.ReadJSON(&p))
	return &p
}

// queuePayout stakes and withdraws amount for account, then pays the queue.
func queuePayout(t *testing.T, eng *engine.Engine, account tcs.Address, amount int64) {
	require.NoError(t, eng.Deposit(review, account, big.NewInt(amount)))
	_, err := eng.Withdraw(review, account, big.NewInt(amount))
	require.NoError(t, err)
	paid, err := eng.PayoutFunds()
	require.NoError(t, err)
	require.Len(t, paid, 1)
}

func TestSubscribePayouts(t *testing.T) {
	eng := newEngine(t)
	ts, subs := newServer(t, eng)

	// recorded before subscribing
	queuePayout(t, eng, alice, 10)

	conn := dial(t, ts, "/subscriptions/payout")
	p := readPayout(t, conn)
	assert.Equal(t, uint64(1), p.Seq)
	assert.Equal(t, alice, p.Recipient)
	assert.Equal(t, int64(10), (*big.Int)(p.Amount).Int64())

	// pushed on commit
	queuePayout(t, eng, bob, 20)
	p = readPayout(t, conn)
	assert.Equal(t, uint64(2), p.Seq)
	assert.Equal(t, bob, p.Recipient)

	// resumed from a position, filtered by recipient
	queuePayout(t, eng, alice, 30)
	resumed := dial(t, ts, "/subscriptions/payout?pos=1&recipient="+alice.String())
	p = readPayout(t, resumed)
	assert.Equal(t, uint64(3), p.Seq)
	assert.Equal(t, int64(30), (*big.Int)(p.Amount).Int64())

	subs.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	// the queued third payout may arrive before the close frame
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
			break
		}
	}
}

func TestSubscribeDistributions(t *testing.T) {
	eng := newEngine(t)
	ts, _ := newServer(t, eng)

	conn := dial(t, ts, "/subscriptions/distribution")

	require.NoError(t, eng.Deposit(review, alice, big.NewInt(100)))
	_, err := eng.ClaimIncome(review, big.NewInt(50))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var d staking.Distribution
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, uint64(1), d.Seq)
	assert.Equal(t, int64(50), (*big.Int)(d.Amount).Int64())
	assert.Equal(t, int64(100), (*big.Int)(d.Supply).Int64())
}

func TestSubscribeErrors(t *testing.T) {
	ts, _ := newServer(t, newEngine(t))

	for path, code := range map[string]int{
		"/subscriptions/blocks":                       http.StatusNotFound,
		"/subscriptions/payout?pos=abc":               http.StatusBadRequest,
		"/subscriptions/payout?recipient=0x1234":      http.StatusBadRequest,
		"/subscriptions/distribution?pos=18446744073": http.StatusOK,
	} {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
		conn, res, err := websocket.DefaultDialer.Dial(url, nil)
		if code == http.StatusOK {
			require.NoError(t, err, path)
			conn.Close()
			continue
		}
		assert.Error(t, err, path)
		require.NotNil(t, res, path)
		assert.Equal(t, code, res.StatusCode, path)
	}

	// a plain request is rejected by the upgrader
	res, err := http.Get(ts.URL + "/subscriptions/payout")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSubscribeWithoutHistory(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ts, _ := newServer(t, engine.New(state.NewStater(db, 0), nil))
	res, err := http.Get(ts.URL + "/subscriptions/payout")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)
}
