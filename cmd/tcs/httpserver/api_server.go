// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/transcranial/tcs/log"
)

var logger = log.WithContext("pkg", "httpserver")

// maxBodySize bounds request bodies, operations carry a handful of fields.
const maxBodySize = 64 * 1024

// StartAPIServer serves handler on addr. It returns the base url and a func
// which stops the server and waits for it to exit.
func StartAPIServer(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = requestBodyLimit(handler)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return "http://" + listener.Addr().String() + "/", serve(srv, listener, "api"), nil
}

// handleAPITimeout bounds the request context. Websocket subscriptions live
// until either side closes them and are left unbounded.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		h.ServeHTTP(w, r)
	})
}

// serve runs srv in the background and returns its stop func.
func serve(srv *http.Server, listener net.Listener, name string) func() {
	var g errgroup.Group
	g.Go(func() error {
		return srv.Serve(listener)
	})
	return func() {
		srv.Close()
		if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server exited", "server", name, "err", err)
		}
	}
}
