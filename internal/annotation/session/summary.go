package session

import (
	"gonum.org/v1/gonum/floats"

	"takeoff/internal/annotation/calibration"
	"takeoff/internal/annotation/models"
)

// Group totals the annotations sharing a tag. Untagged annotations form a
// group with an empty TagID.
type Group struct {
	TagID  string  `json:"tagId"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Count  int     `json:"count"`
	Meters float64 `json:"meters"`
	// Estimated is set when some length in the group used a fallback factor.
	Estimated bool `json:"estimated"`
}

type Summary struct {
	Kind   models.Kind `json:"kind"`
	Groups []Group     `json:"groups"`
	Count  int         `json:"count"`
	Meters float64     `json:"meters"`
}

// Summary totals the document per tag, in order of first appearance. Lengths
// are converted with each page's calibration at call time.
func (s *Session[T]) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	type acc struct {
		group   Group
		lengths []float64
	}
	index := make(map[string]int)
	var groups []*acc

	for _, item := range s.items {
		key := ""
		tag := item.Label()
		if tag != nil {
			key = tag.ID
		}
		i, ok := index[key]
		if !ok {
			g := &acc{}
			if tag != nil {
				g.group = Group{TagID: tag.ID, Name: tag.Name, Color: tag.Color}
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, g)
		}
		g := groups[i]
		g.group.Count++

		if m, ok := any(item).(models.Measurement); ok {
			factor, exact := calibration.Factor(s.doc.CalibrationScale[m.Page], s.doc.ViewportDimensions)
			g.lengths = append(g.lengths, m.Meters(factor))
			if !exact {
				g.group.Estimated = true
			}
		}
	}

	out := Summary{Kind: s.kind.name, Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		g.group.Meters = floats.Sum(g.lengths)
		out.Groups = append(out.Groups, g.group)
		out.Count += g.group.Count
		out.Meters += g.group.Meters
	}
	return out
}
