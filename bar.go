/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	barFill  = "="
	barEmpty = " "
)

// renderBar returns a bar of exactly width characters with round(percent/100*width)
// fill characters. Ties round half away from zero.
func renderBar(percent float64, width int) (string, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return "", errors.Wrapf(ErrOutOfRange, "percent must be between 0 and 100, got %v", percent)
	}
	if width < 0 {
		return "", errors.Wrapf(ErrOutOfRange, "bar width must not be negative, got %d", width)
	}

	filled := int(math.Round(percent / 100 * float64(width)))
	filled = max(0, min(filled, width))

	return strings.Repeat(barFill, filled) + strings.Repeat(barEmpty, width-filled), nil
}
