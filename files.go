/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

var sizeUnits = [...]string{"B", "K", "M", "G", "T"}

// formatSize renders a byte count either as a plain "<n> B" or, in
// human-readable mode, stepped through 1024-based units up to terabytes.
func formatSize(size int64, human bool) string {
	if !human {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}
