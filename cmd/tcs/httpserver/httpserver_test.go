// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/metrics"
)

func TestStartAPIServer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.Write(body)
	})

	url, closeFunc, err := StartAPIServer("127.0.0.1:0", handler, time.Second)
	require.NoError(t, err)
	defer closeFunc()
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:"))

	res, err := http.Post(url, "text/plain", strings.NewReader("ping"))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ping", string(body))

	res, err = http.Post(url, "text/plain", bytes.NewReader(make([]byte, maxBodySize+1)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
}

func TestStartAPIServerBadAddr(t *testing.T) {
	_, _, err := StartAPIServer("bad-addr", http.NotFoundHandler(), 0)
	assert.Error(t, err)
}

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.Counter("httpserver_test").Add(1)

	url, closeFunc, err := StartMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	defer closeFunc()

	res, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "tcs_httpserver_test 1")
}
