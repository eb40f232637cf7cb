package core

import (
	"math"
	"strconv"
)

// sizeUnits are the binary (base-1024) display units, smallest first.
var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize converts a byte count into a human-readable string using
// base-1024 units, e.g. 1536 → "1.5 KB" and 0 → "0B". The scaled value is
// rounded to two decimals and always shows at least one decimal digit.
// Negative counts render as "0B".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0B"
	}

	// Largest unit where the scaled value is still >= 1, clamped to the
	// table so values past YB stay in YB.
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}

	rounded := math.Round(value*100) / 100
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if rounded == math.Trunc(rounded) {
		s += ".0"
	}
	return s + " " + sizeUnits[i]
}

// Freed is the number of bytes reclaimed by one cleanup operation. It is
// signed because a file set can grow between the scans that bracket a
// deletion. File sets and journal vacuums both report through it so callers
// can sum heterogeneous results.
type Freed int64

// Bytes returns the raw byte count.
func (f Freed) Bytes() int64 { return int64(f) }

// String renders the amount with FormatSize.
func (f Freed) String() string { return FormatSize(int64(f)) }
