/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

type reportOptions struct {
	human    bool
	barWidth int
}

type Row struct {
	Path    string
	Size    int64
	Percent float64
	Bar     string
	SizeStr string
}

func (r Row) String() string {
	return fmt.Sprintf("%5.1f%% [%s] %-10s %s", r.Percent, r.Bar, r.SizeStr, r.Path)
}

type Report struct {
	Target   string
	Total    int64
	TotalStr string
	Rows     []Row
}

// buildReport computes each record's share of the total and renders its bar.
// A zero total yields zero percent for every row rather than dividing by zero.
func buildReport(target string, usage Usage, opts reportOptions) (*Report, error) {
	if len(usage) == 0 {
		return nil, errors.WithHint(
			errors.Wrapf(ErrEmptyReport, "scan of %q returned no records", target),
			"check that the target exists and is a readable directory")
	}

	total, err := usage.Total()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Target:   target,
		Total:    total,
		TotalStr: formatSize(total, opts.human),
		Rows:     make([]Row, 0, len(usage)),
	}

	for _, record := range usage {
		var percent float64
		if total > 0 {
			percent = float64(record.Size) / float64(total) * 100
		}

		bar, err := renderBar(percent, opts.barWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering %q", record.Path)
		}

		report.Rows = append(report.Rows, Row{
			Path:    record.Path,
			Size:    record.Size,
			Percent: percent,
			Bar:     bar,
			SizeStr: formatSize(record.Size, opts.human),
		})
	}

	return report, nil
}

func (r *Report) Header() string {
	return fmt.Sprintf("Disk Usage for %s (Total: %s)", r.Target, r.TotalStr)
}

// Lines returns the header followed by one line per row.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Rows)+1)

	lines = append(lines, r.Header())
	for _, row := range r.Rows {
		lines = append(lines, row.String())
	}

	return lines
}

func (r *Report) String() string {
	var b strings.Builder

	for _, line := range r.Lines() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
