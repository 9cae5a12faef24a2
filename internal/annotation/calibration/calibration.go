// Package calibration converts document pixels into metres from a sheet's
// physical size and its drawing scale.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"takeoff/internal/annotation/models"
)

// ErrNotCalibrated is returned when the size table has no entry for a
// viewport/scale pair. Callers fall back to Default or a neutral factor.
var ErrNotCalibrated = errors.New("calibration: not calibrated")

const pointsPerInch = 72.0

// ViewportKey builds the "WxH" lookup key with the longer side first.
func ViewportKey(v models.Viewport) string {
	w, h := v.Width, v.Height
	if h > w {
		w, h = h, w
	}
	return fmt.Sprintf("%dx%d", w, h)
}

// Resolve returns the stored metres-per-pixel factor for scaleKey on a sheet
// of the given size.
func Resolve(scaleKey string, v models.Viewport) (float64, error) {
	table, ok := sizeTables[ViewportKey(v)]
	if !ok {
		return 0, fmt.Errorf("%w: no table for sheet %s", ErrNotCalibrated, ViewportKey(v))
	}
	factor, ok := table[scaleKey]
	if !ok {
		return 0, fmt.Errorf("%w: no ratio %q for sheet %s", ErrNotCalibrated, scaleKey, ViewportKey(v))
	}
	return factor, nil
}

// Default looks scaleKey up in the size-independent table.
func Default(scaleKey string) (float64, bool) {
	f, ok := defaultTable[scaleKey]
	return f, ok
}

// Factor resolves scaleKey with the full fallback chain: the sheet table,
// then the default table, then 1. exact reports whether the sheet table hit.
func Factor(scaleKey string, v models.Viewport) (factor float64, exact bool) {
	if f, err := Resolve(scaleKey, v); err == nil {
		return f, true
	}
	if f, ok := Default(scaleKey); ok {
		return f, false
	}
	return 1, false
}

// Scales lists the ratio keys offered for a sheet, smallest ratio first.
func Scales(v models.Viewport) []string {
	table, ok := sizeTables[ViewportKey(v)]
	if !ok {
		table = defaultTable
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}

// Calibrated reports whether the sheet has its own table.
func Calibrated(v models.Viewport) bool {
	_, ok := sizeTables[ViewportKey(v)]
	return ok
}

// ViewportFromPoints converts a PDF page size in points to whole inches.
func ViewportFromPoints(width, height float64) models.Viewport {
	return models.Viewport{
		Width:  int(math.Round(width / pointsPerInch)),
		Height: int(math.Round(height / pointsPerInch)),
	}
}
