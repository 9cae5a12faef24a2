// Package tags keeps the palette of categories that can be attached to
// annotations.
package tags

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"takeoff/internal/annotation/models"
)

var (
	ErrUnknownTag   = errors.New("tags: unknown tag")
	ErrInvalidColor = errors.New("tags: invalid color")
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Registry is the active palette. Annotations copy a tag when it is applied,
// so removing a tag here never rewrites existing annotations.
type Registry struct {
	tags     []models.Tag
	selected string
}

func NewRegistry(initial []models.Tag) *Registry {
	return &Registry{tags: slices.Clone(initial)}
}

// Create adds a tag. Ids are time-ordered UUIDs, so names may repeat.
func (r *Registry) Create(name, color string) (models.Tag, error) {
	if !hexColor.MatchString(color) {
		return models.Tag{}, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return models.Tag{}, fmt.Errorf("tag id: %w", err)
	}
	tag := models.Tag{
		ID:    id.String(),
		Name:  strings.TrimSpace(name),
		Color: strings.ToLower(color),
	}
	r.tags = append(r.tags, tag)
	return tag, nil
}

// Delete removes a tag from the palette. It reports whether the tag existed.
func (r *Registry) Delete(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.tags = slices.Delete(r.tags, i, i+1)
	if r.selected == id {
		r.selected = ""
	}
	return true
}

func (r *Registry) Get(id string) (models.Tag, bool) {
	i := r.index(id)
	if i < 0 {
		return models.Tag{}, false
	}
	return r.tags[i], true
}

// Select marks the tag applied to newly created annotations.
func (r *Registry) Select(id string) error {
	if r.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTag, id)
	}
	r.selected = id
	return nil
}

func (r *Registry) Deselect() {
	r.selected = ""
}

// Selected returns a copy of the selected tag, or nil.
func (r *Registry) Selected() *models.Tag {
	tag, ok := r.Get(r.selected)
	if !ok {
		return nil
	}
	return &tag
}

func (r *Registry) List() []models.Tag {
	return slices.Clone(r.tags)
}

func (r *Registry) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(r.tags, func(t models.Tag) bool { return t.ID == id })
}
