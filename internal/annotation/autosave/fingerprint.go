package autosave

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"takeoff/internal/annotation/models"
)

type measurementIdentity struct {
	ID            int64           `json:"id"`
	Points        [2]models.Point `json:"points"`
	PixelDistance float64         `json:"pixelDistance"`
	Page          int             `json:"page"`
	Tag           *models.Tag     `json:"tag"`
}

type fixtureIdentity struct {
	ID    int64        `json:"id"`
	Point models.Point `json:"point"`
	Page  int          `json:"page"`
	Tag   *models.Tag  `json:"tag"`
}

type stateIdentity struct {
	Kind               models.Kind           `json:"kind"`
	Measurements       []measurementIdentity `json:"measurements"`
	Fixtures           []fixtureIdentity     `json:"fixtures"`
	Tags               []models.Tag          `json:"tags"`
	PageScales         map[int]float64       `json:"pageScales"`
	CalibrationScale   map[int]string        `json:"calibrationScale"`
	ViewportDimensions models.Viewport       `json:"viewportDimensions"`
}

// Fingerprint digests the identity-relevant part of a state. Annotation
// timestamps do not take part, so refreshing them never looks like an edit.
func Fingerprint(s models.State) string {
	view := stateIdentity{
		Kind:               s.Kind,
		Measurements:       make([]measurementIdentity, 0, len(s.Measurements)),
		Fixtures:           make([]fixtureIdentity, 0, len(s.Fixtures)),
		Tags:               s.Tags,
		PageScales:         s.PageScales,
		CalibrationScale:   s.CalibrationScale,
		ViewportDimensions: s.ViewportDimensions,
	}
	for _, m := range s.Measurements {
		view.Measurements = append(view.Measurements, measurementIdentity{
			ID:            m.ID,
			Points:        m.Points,
			PixelDistance: m.PixelDistance,
			Page:          m.Page,
			Tag:           m.Tag,
		})
	}
	for _, f := range s.Fixtures {
		view.Fixtures = append(view.Fixtures, fixtureIdentity{
			ID:    f.ID,
			Point: f.Point,
			Page:  f.Page,
			Tag:   f.Tag,
		})
	}
	if len(view.Tags) == 0 {
		view.Tags = nil
	}
	if len(view.PageScales) == 0 {
		view.PageScales = nil
	}
	if len(view.CalibrationScale) == 0 {
		view.CalibrationScale = nil
	}

	// Marshal sorts map keys. It only fails on NaN or Inf, which the session
	// refuses to store.
	data, _ := json.Marshal(view)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
