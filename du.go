/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

// Scanner returns the raw "<bytes>\t<path>" output of a disk usage scan of
// target and its immediate children.
type Scanner interface {
	Scan(ctx context.Context, target string) (string, error)
}

type duScanner struct {
	command string
	cfg     *Config
}

func newDuScanner(cfg *Config) *duScanner {
	return &duScanner{
		command: cfg.duCommand,
		cfg:     cfg,
	}
}

func (d *duScanner) args(target string) []string {
	return []string{"-B1", "-d", "1", target}
}

func (d *duScanner) Scan(ctx context.Context, target string) (string, error) {
	startTime := time.Now()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, d.command, d.args(target)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Run waits for the process and both pipes, so the handle is released on every path.
	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.Wrapf(errors.Mark(ctxErr, ErrScanFailed), "%s %s", d.command, target)
		}

		return "", errors.WithHint(
			errors.Wrapf(ErrScanFailed, "%s %s: %s", d.command, target, msg),
			"check that the target exists and is a readable directory")
	}

	logf(d.cfg, "SCAN: %s %s returned %d bytes in %s",
		d.command,
		target,
		stdout.Len(),
		time.Since(startTime).Round(time.Microsecond),
	)

	return stdout.String(), nil
}

// sharedScanner lets concurrent callers scanning the same target share one run.
// The run is detached from any single caller's cancellation and bounded by
// timeout instead; each caller still stops waiting when its own ctx ends.
type sharedScanner struct {
	inner   Scanner
	timeout time.Duration
	group   singleflight.Group
}

func newSharedScanner(inner Scanner, timeout time.Duration) *sharedScanner {
	return &sharedScanner{
		inner:   inner,
		timeout: timeout,
	}
}

func (s *sharedScanner) Scan(ctx context.Context, target string) (string, error) {
	results := s.group.DoChan(target, func() (any, error) {
		scanCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			scanCtx, cancel = context.WithTimeout(scanCtx, s.timeout)
			defer cancel()
		}

		return s.inner.Scan(scanCtx, target)
	})

	select {
	case <-ctx.Done():
		return "", errors.Wrapf(errors.Mark(ctx.Err(), ErrScanFailed), "waiting for scan of %s", target)
	case res := <-results:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil
	}
}

// generateReport scans the configured target and builds the report from the
// complete output, so nothing is rendered unless every record parsed.
func generateReport(ctx context.Context, cfg *Config, sc Scanner) (*Report, error) {
	blob, err := sc.Scan(ctx, cfg.target)
	if err != nil {
		return nil, err
	}

	usage, err := parseUsage(blob)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing output for %q", cfg.target)
	}

	return buildReport(cfg.target, usage, reportOptions{
		human:    cfg.human,
		barWidth: cfg.length,
	})
}
