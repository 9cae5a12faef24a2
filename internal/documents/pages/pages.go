// Package pages reads the physical sheet sizes of a drawing PDF.
package pages

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"takeoff/internal/annotation/calibration"
	"takeoff/internal/annotation/models"
)

type Page struct {
	Number   int
	WidthPt  float64
	HeightPt float64
	Viewport models.Viewport
	// Calibrated is set when the sheet size has its own scale table.
	Calibrated bool
}

// Read returns every page of the PDF at path with its size in points and in
// whole inches.
func Read(path string) ([]Page, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("page dimensions of %s: %w", path, err)
	}

	out := make([]Page, 0, len(dims))
	for i, d := range dims {
		v := calibration.ViewportFromPoints(d.Width, d.Height)
		out = append(out, Page{
			Number:     i + 1,
			WidthPt:    d.Width,
			HeightPt:   d.Height,
			Viewport:   v,
			Calibrated: calibration.Calibrated(v),
		})
	}
	return out, nil
}

// Count returns the number of pages.
func Count(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count of %s: %w", path, err)
	}
	return n, nil
}

// Viewport returns the sheet size of one 1-based page.
func Viewport(path string, page int) (models.Viewport, error) {
	n, err := Count(path)
	if err != nil {
		return models.Viewport{}, err
	}
	if page < 1 || page > n {
		return models.Viewport{}, fmt.Errorf("invalid page number: %d (total pages: %d)", page, n)
	}

	all, err := Read(path)
	if err != nil {
		return models.Viewport{}, err
	}
	return all[page-1].Viewport, nil
}
