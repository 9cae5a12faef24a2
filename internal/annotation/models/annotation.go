package models

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// ============================================================
// Geometry
// ============================================================

// Point is a position in unscaled document coordinates. Pages are 1-based.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"`
}

// Distance returns the Euclidean distance between a and b, ignoring pages.
func Distance(a, b Point) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}

// ============================================================
// Tags
// ============================================================

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// clone returns an independent copy so annotations never share a tag with the
// registry or with each other.
func (t *Tag) clone() *Tag {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// ============================================================
// Annotations
// ============================================================

// Annotation is the constraint shared by the two annotation kinds.
type Annotation interface {
	Measurement | Fixture
	Key() int64
	OnPage() int
	Label() *Tag
}

type Measurement struct {
	ID            int64     `json:"id"`
	Points        [2]Point  `json:"points"`
	PixelDistance float64   `json:"pixelDistance"`
	Page          int       `json:"page"`
	Tag           *Tag      `json:"tag,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewMeasurement builds a measurement between a and b on a's page. The pixel
// distance is fixed here and never recomputed.
func NewMeasurement(id int64, a, b Point, tag *Tag, now time.Time) Measurement {
	b.Page = a.Page
	return Measurement{
		ID:            id,
		Points:        [2]Point{a, b},
		PixelDistance: Distance(a, b),
		Page:          a.Page,
		Tag:           tag.clone(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (m Measurement) Key() int64  { return m.ID }
func (m Measurement) OnPage() int { return m.Page }
func (m Measurement) Label() *Tag { return m.Tag }

// Meters converts the stored pixel distance with a metres-per-pixel factor.
func (m Measurement) Meters(factor float64) float64 {
	return m.PixelDistance * factor
}

type Fixture struct {
	ID        int64     `json:"id"`
	Point     Point     `json:"point"`
	Page      int       `json:"page"`
	Tag       *Tag      `json:"tag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewFixture(id int64, p Point, tag *Tag, now time.Time) Fixture {
	return Fixture{
		ID:        id,
		Point:     p,
		Page:      p.Page,
		Tag:       tag.clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f Fixture) Key() int64  { return f.ID }
func (f Fixture) OnPage() int { return f.Page }
func (f Fixture) Label() *Tag { return f.Tag }

// WithTag returns a copy of a carrying its own copy of tag (nil clears it).
func WithTag[T Annotation](a T, tag *Tag, now time.Time) T {
	switch v := any(a).(type) {
	case Measurement:
		v.Tag = tag.clone()
		v.UpdatedAt = now
		return any(v).(T)
	case Fixture:
		v.Tag = tag.clone()
		v.UpdatedAt = now
		return any(v).(T)
	}
	return a
}

// Stamp fills a missing UpdatedAt with now.
func Stamp[T Annotation](a T, now time.Time) T {
	switch v := any(a).(type) {
	case Measurement:
		if v.UpdatedAt.IsZero() {
			v.UpdatedAt = now
		}
		return any(v).(T)
	case Fixture:
		if v.UpdatedAt.IsZero() {
			v.UpdatedAt = now
		}
		return any(v).(T)
	}
	return a
}

// CloneAll copies a slice of annotations including their tags.
func CloneAll[T Annotation](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, a := range in {
		switch v := any(a).(type) {
		case Measurement:
			v.Tag = v.Tag.clone()
			out[i] = any(v).(T)
		case Fixture:
			v.Tag = v.Tag.clone()
			out[i] = any(v).(T)
		}
	}
	return out
}
