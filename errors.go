/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrMalformedRecord = errors.New("malformed usage record")
	ErrEmptyReport     = errors.New("no usage records to report")
	ErrOutOfRange      = errors.New("value out of range")
	ErrScanFailed      = errors.New("disk usage scan failed")
)

func newLogger(verbose bool, w zapcore.WriteSyncer, colour bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(logDate)
	if colour {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, zap.DebugLevel)

	return zap.New(core).Sugar()
}

func stderrLogger(verbose bool) *zap.SugaredLogger {
	colour := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	return newLogger(verbose, zapcore.Lock(os.Stderr), colour)
}

func logf(cfg *Config, format string, args ...any) {
	if cfg.logger == nil {
		return
	}

	cfg.logger.Infof(format, args...)
}

// printError writes err and any hints attached to it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
