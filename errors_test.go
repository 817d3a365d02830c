package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestPrintErrorIncludesHints(t *testing.T) {
	_, err := buildReport("/missing", nil, reportOptions{barWidth: 20})
	require.Error(t, err)

	var buf bytes.Buffer
	printError(&buf, err)

	assert.Contains(t, buf.String(), "Error: scan of \"/missing\" returned no records")
	assert.Contains(t, buf.String(), "Hint: check that the target exists and is a readable directory")
}

func TestLoggerQuietUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Config{logger: newLogger(false, zapcore.AddSync(&buf), false)}
	logf(cfg, "SCAN: %s", "quiet")
	assert.Empty(t, buf.String())

	cfg.logger = newLogger(true, zapcore.AddSync(&buf), false)
	logf(cfg, "SCAN: %s", "loud")
	assert.Contains(t, buf.String(), "SCAN: loud")
	assert.Contains(t, buf.String(), "INFO")
}

func TestLogfWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() { logf(&Config{}, "nothing %d", 1) })
}
