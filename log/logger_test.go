// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func TestWithContextFollowsRoot(t *testing.T) {
	prev := ethlog.Root()
	defer ethlog.SetDefault(prev)

	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	level := Init(&buf, 3, true)

	logger.Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"pkg":"test"`)
	assert.Contains(t, buf.String(), `"k":1`)

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	level.Set(LevelDebug)
	logger.With("sub", "x").Debug("shown")
	assert.Contains(t, buf.String(), `"sub":"x"`)
	assert.Contains(t, buf.String(), `"pkg":"test"`)
}

func TestTerminalOutput(t *testing.T) {
	prev := ethlog.Root()
	defer ethlog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, 3, false)
	Info("started", "port", 8669)
	assert.Contains(t, buf.String(), "started")
	assert.Contains(t, buf.String(), "port=8669")
	assert.False(t, useColor(&buf))
}

func TestInitLevelFollowsLevelVar(t *testing.T) {
	prev := ethlog.Root()
	defer ethlog.SetDefault(prev)

	var buf bytes.Buffer
	level := Init(&buf, 3, false)
	Debug("quiet")
	assert.Empty(t, buf.String())

	level.Set(LevelTrace)
	Trace("loud", "n", 1)
	assert.Contains(t, buf.String(), "loud")

	buf.Reset()
	level.Set(LevelError)
	Warn("dropped")
	Error("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitVerbosity(t *testing.T) {
	prev := ethlog.Root()
	defer ethlog.SetDefault(prev)

	for verbosity, want := range map[int]slog.Level{
		0: LevelCrit,
		1: LevelError,
		3: LevelInfo,
		5: LevelTrace,
		9: LevelTrace,
	} {
		var buf bytes.Buffer
		assert.Equal(t, want, Init(&buf, verbosity, true).Level(), "verbosity %d", verbosity)
	}
}
