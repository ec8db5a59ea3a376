// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/transcranial/tcs/api/admin/loglevel"
	"github.com/transcranial/tcs/api/governance"
	"github.com/transcranial/tcs/api/staking"
	"github.com/transcranial/tcs/api/subscriptions"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	LogsLimit       uint64
	EnableReqLogger bool
	EnableMetrics   bool
	// LogLevel enables the log level admin endpoint when set.
	LogLevel *slog.LevelVar
}

// New return api router and the func closing long lived subscriptions.
func New(eng *engine.Engine, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(eng, opts.LogsLimit).
		Mount(router, "/staking")
	governance.New(eng).
		Mount(router, "/governance")
	subs := subscriptions.New(eng, origins)
	subs.Mount(router, "/subscriptions")
	if opts.LogLevel != nil {
		loglevel.New(opts.LogLevel).
			Mount(router, "/admin/loglevel")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler.ServeHTTP, subs.Close
}
