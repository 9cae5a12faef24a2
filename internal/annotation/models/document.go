package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// ============================================================
// Document
// ============================================================

// Kind selects which annotation type a document carries.
type Kind string

const (
	KindMeasurement Kind = "measurement"
	KindFixture     Kind = "fixture"
)

func (k Kind) Valid() bool {
	return k == KindMeasurement || k == KindFixture
}

// Viewport is the physical page size in whole inches.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// State is the editable part of a document: everything the synchronizer
// persists and fingerprints.
type State struct {
	Kind               Kind
	Measurements       []Measurement
	Fixtures           []Fixture
	Tags               []Tag
	PageScales         map[int]float64
	CalibrationScale   map[int]string
	ViewportDimensions Viewport
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Kind:               s.Kind,
		Measurements:       CloneAll(s.Measurements),
		Fixtures:           CloneAll(s.Fixtures),
		Tags:               slices.Clone(s.Tags),
		PageScales:         maps.Clone(s.PageScales),
		CalibrationScale:   maps.Clone(s.CalibrationScale),
		ViewportDimensions: s.ViewportDimensions,
	}
}

// SaveFields is the exact field set written by an autosave.
type SaveFields struct {
	Kind               Kind            `json:"kind"`
	Measurements       []Measurement   `json:"-"`
	Fixtures           []Fixture       `json:"-"`
	Tags               []Tag           `json:"tags"`
	PageScales         map[int]float64 `json:"pageScales"`
	CalibrationScale   map[int]string  `json:"calibrationScale"`
	ViewportDimensions Viewport        `json:"viewportDimensions"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (f SaveFields) MarshalJSON() ([]byte, error) {
	type plain SaveFields
	annotations, err := encodeAnnotations(f.Kind, f.Measurements, f.Fixtures)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		plain
		Annotations json.RawMessage `json:"annotations"`
	}{plain(f), annotations})
}

func (f *SaveFields) UnmarshalJSON(data []byte) error {
	type plain SaveFields
	var aux struct {
		plain
		Annotations json.RawMessage `json:"annotations"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = SaveFields(aux.plain)
	return decodeAnnotations(f.Kind, aux.Annotations, &f.Measurements, &f.Fixtures)
}

// Document is the aggregate persisted by the document store.
type Document struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	FileName           string          `json:"fileName"`
	FileURL            string          `json:"fileUrl,omitempty"`
	Kind               Kind            `json:"kind"`
	Measurements       []Measurement   `json:"-"`
	Fixtures           []Fixture       `json:"-"`
	Tags               []Tag           `json:"tags"`
	PageScales         map[int]float64 `json:"pageScales"`
	CalibrationScale   map[int]string  `json:"calibrationScale"`
	ViewportDimensions Viewport        `json:"viewportDimensions"`
	OwnerUserID        string          `json:"ownerUserId"`
	ProjectID          string          `json:"projectId"`
	CompanyID          string          `json:"companyId"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	annotations, err := encodeAnnotations(d.Kind, d.Measurements, d.Fixtures)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		plain
		Annotations json.RawMessage `json:"annotations"`
	}{plain(d), annotations})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var aux struct {
		plain
		Annotations json.RawMessage `json:"annotations"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Document(aux.plain)
	return decodeAnnotations(d.Kind, aux.Annotations, &d.Measurements, &d.Fixtures)
}

// PageScale returns the zoom factor for page, 1 when unset.
func (d *Document) PageScale(page int) float64 {
	if s, ok := d.PageScales[page]; ok && s > 0 {
		return s
	}
	return 1
}

// State returns a deep copy of the editable fields.
func (d *Document) State() State {
	return State{
		Kind:               d.Kind,
		Measurements:       d.Measurements,
		Fixtures:           d.Fixtures,
		Tags:               d.Tags,
		PageScales:         d.PageScales,
		CalibrationScale:   d.CalibrationScale,
		ViewportDimensions: d.ViewportDimensions,
	}.Clone()
}

// Apply overwrites the persisted fields of d with f.
func (d *Document) Apply(f SaveFields) {
	d.Measurements = CloneAll(f.Measurements)
	d.Fixtures = CloneAll(f.Fixtures)
	d.Tags = slices.Clone(f.Tags)
	d.PageScales = maps.Clone(f.PageScales)
	d.CalibrationScale = maps.Clone(f.CalibrationScale)
	d.ViewportDimensions = f.ViewportDimensions
	d.UpdatedAt = f.UpdatedAt
}

// Fields packages a state for the persistence interface.
func (s State) Fields(updatedAt time.Time) SaveFields {
	return SaveFields{
		Kind:               s.Kind,
		Measurements:       s.Measurements,
		Fixtures:           s.Fixtures,
		Tags:               s.Tags,
		PageScales:         s.PageScales,
		CalibrationScale:   s.CalibrationScale,
		ViewportDimensions: s.ViewportDimensions,
		UpdatedAt:          updatedAt,
	}
}

// EncodeAnnotations returns the JSON array stored for the document's kind.
func EncodeAnnotations(kind Kind, measurements []Measurement, fixtures []Fixture) ([]byte, error) {
	return encodeAnnotations(kind, measurements, fixtures)
}

// DecodeAnnotations parses an annotations array according to kind.
func DecodeAnnotations(kind Kind, data []byte) ([]Measurement, []Fixture, error) {
	var m []Measurement
	var f []Fixture
	err := decodeAnnotations(kind, data, &m, &f)
	return m, f, err
}

func encodeAnnotations(kind Kind, measurements []Measurement, fixtures []Fixture) (json.RawMessage, error) {
	switch kind {
	case KindMeasurement:
		if measurements == nil {
			measurements = []Measurement{}
		}
		return json.Marshal(measurements)
	case KindFixture:
		if fixtures == nil {
			fixtures = []Fixture{}
		}
		return json.Marshal(fixtures)
	case "":
		return json.RawMessage("[]"), nil
	}
	return nil, fmt.Errorf("unknown annotation kind %q", kind)
}

func decodeAnnotations(kind Kind, data json.RawMessage, measurements *[]Measurement, fixtures *[]Fixture) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch kind {
	case KindMeasurement:
		return json.Unmarshal(data, measurements)
	case KindFixture:
		return json.Unmarshal(data, fixtures)
	case "":
		return nil
	}
	return fmt.Errorf("unknown annotation kind %q", kind)
}
