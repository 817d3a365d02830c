/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Record is one size/path pair reported by the disk usage utility.
type Record struct {
	Path string
	Size int64
}

// Usage holds records in the order the utility emitted them.
type Usage []Record

// Total sums all record sizes, failing rather than wrapping past MaxInt64.
func (u Usage) Total() (int64, error) {
	var total int64
	for _, r := range u {
		if r.Size > math.MaxInt64-total {
			return 0, errors.Wrapf(ErrOutOfRange, "total size overflows at %q", r.Path)
		}
		total += r.Size
	}

	return total, nil
}

// parseUsage reads "<bytes>\t<path>" lines. Only the first tab separates the
// fields. Trailing blank lines are ignored; a blank line followed by another
// record is malformed.
func parseUsage(blob string) (Usage, error) {
	var usage Usage

	seen := make(map[string]int)

	scanner := bufio.NewScanner(strings.NewReader(blob))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line, blank := 0, 0
	for scanner.Scan() {
		line++

		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			if blank == 0 {
				blank = line
			}
			continue
		}
		if blank != 0 {
			return nil, errors.Wrapf(ErrMalformedRecord, "line %d: empty record", blank)
		}

		sizeField, path, found := strings.Cut(text, "\t")
		if !found {
			return nil, errors.Wrapf(ErrMalformedRecord, "line %d: no tab separator in %q", line, text)
		}

		size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 10, 64)
		if err != nil || size < 0 {
			return nil, errors.Wrapf(ErrMalformedRecord, "line %d: invalid size %q", line, sizeField)
		}

		path = strings.TrimSpace(path)

		if first, ok := seen[path]; ok {
			return nil, errors.Wrapf(ErrMalformedRecord, "line %d: duplicate path %q (first seen on line %d)", line, path, first)
		}
		seen[path] = line

		usage = append(usage, Record{Path: path, Size: size})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrMalformedRecord, "line %d: %v", line+1, err)
	}

	return usage, nil
}
