// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log wraps go-ethereum's slog based logger with package scoped loggers
// that follow the root handler installed at startup.
package log

import (
	"io"
	"log/slog"
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs to the root handler.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type contextLogger struct {
	ctx []any
}

// WithContext returns a logger which prepends ctx to every record.
// The root handler is resolved per record, so package level loggers
// created before Init still reach the configured output.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx}
}

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{l.merge(ctx)}
}

func (l *contextLogger) merge(ctx []any) []any {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	return append(append(merged, l.ctx...), ctx...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.merge(ctx)...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.merge(ctx)...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.merge(ctx)...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.merge(ctx)...) }
func (l *contextLogger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.merge(ctx)...) }

func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// Init installs the root handler writing to w. Verbosity follows the legacy
// scale from 0 (crit) to 5 (trace), larger values mean trace. The returned
// level is read for every record and can be changed at runtime.
func Init(w io.Writer, verbosity int, jsonFormat bool) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(ethlog.FromLegacyLevel(verbosity))

	var handler slog.Handler
	if jsonFormat {
		handler = ethlog.JSONHandler(w)
	} else {
		handler = ethlog.NewTerminalHandler(w, useColor(w))
	}
	ethlog.SetDefault(ethlog.NewLogger(NewLevelHandler(level, handler)))
	return level
}

func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
}
