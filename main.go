/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg, nil).ExecuteContext(ctx); err != nil {
		stop()
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// PrintReport scans the target once and writes the finished report to w.
func PrintReport(ctx context.Context, cfg *Config, sc Scanner, w io.Writer) error {
	scanCtx, cancel := cfg.scanContext(ctx)
	defer cancel()

	report, err := generateReport(scanCtx, cfg, sc)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, report.String())

	return err
}
