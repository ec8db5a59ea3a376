// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
)

// levelHandler drops records below a level which may change at runtime.
type levelHandler struct {
	lvl    *slog.LevelVar
	origin slog.Handler
}

// NewLevelHandler wraps h so that only records at or above lvl reach it.
func NewLevelHandler(lvl *slog.LevelVar, h slog.Handler) slog.Handler {
	return &levelHandler{lvl: lvl, origin: h}
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.lvl.Level() && h.origin.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.lvl.Level() {
		return nil
	}
	return h.origin.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{lvl: h.lvl, origin: h.origin.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{lvl: h.lvl, origin: h.origin.WithGroup(name)}
}
