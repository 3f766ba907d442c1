package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Common validation errors for Presentation.
var (
	ErrEmptyPresentationID    = errors.New("presentation ID cannot be empty")
	ErrEmptyPresentationTitle = errors.New("presentation title cannot be empty")
	ErrNoSlides               = errors.New("presentation must contain at least one slide")
	ErrFooterTooLong          = errors.New("presentation footer exceeds character ceiling")
)

// Presentation is a fully specified presentation outline: deck-level metadata
// plus the ordered slide descriptors a stage run works through. Slide order is
// never changed by the stage; slides are enriched in place.
type Presentation struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Footer    string    `json:"footer,omitempty"`
	Slides    []*Slide  `json:"slides"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPresentation creates a presentation from deck metadata and slide
// descriptors. It generates a new UUID, stamps the creation time, and
// validates the presentation-level invariants.
// Returns an error if validation fails.
func NewPresentation(title, footer string, slides []*Slide) (*Presentation, error) {
	p := &Presentation{
		ID:        uuid.New(),
		Title:     title,
		Footer:    footer,
		Slides:    slides,
		CreatedAt: time.Now().UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the presentation-level invariants: a usable ID, a non-empty
// title, at least one slide, and the footer ceiling. Per-slide descriptor
// completeness is checked during the stage run, not here.
func (p *Presentation) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPresentationID
	}

	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyPresentationTitle
	}

	if len(p.Slides) == 0 {
		return ErrNoSlides
	}

	if utf8.RuneCountInString(p.Footer) > MaxFooterChars {
		return ErrFooterTooLong
	}

	return nil
}

// SlideCount returns the number of slides in the presentation.
func (p *Presentation) SlideCount() int {
	return len(p.Slides)
}
