package journal

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	// ErrNoFreedReport means the tool output holds no "freed ... of
	// archived journals" report.
	ErrNoFreedReport = errors.New("no freed-space report in journalctl output")

	// ErrUnknownUnit means a report used a size unit other than B, K, M or G.
	ErrUnknownUnit = errors.New("unknown size unit")
)

// ParseFunc turns vacuum output into a byte count.
type ParseFunc func(output string) (int64, error)

// journalctl prints one line per journal directory, e.g.
//
//	Vacuuming done, freed 1.5M of archived journals from /var/log/journal/6c2f.
var freedPattern = regexp.MustCompile(`freed ([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]*) of archived journals`)

var unitScale = map[string]float64{
	"B": 1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
}

// ParseVacuumOutput sums every freed-space report in journalctl output,
// scaling B, K, M and G by powers of 1024 and rounding to the nearest byte.
//
// Without any report it returns ErrNoFreedReport. Reports with an unknown
// unit contribute nothing; the sum of the others is still returned, along
// with an error wrapping ErrUnknownUnit.
func ParseVacuumOutput(output string) (int64, error) {
	matches := freedPattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, ErrNoFreedReport
	}

	var (
		total float64
		errs  []error
	)
	for _, m := range matches {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("amount %q: %w", m[1], err))
			continue
		}
		scale, ok := unitScale[m[2]]
		if !ok {
			errs = append(errs, fmt.Errorf("%w %q in %q", ErrUnknownUnit, m[2], m[0]))
			continue
		}
		total += amount * scale
	}
	return int64(math.Round(total)), errors.Join(errs...)
}
