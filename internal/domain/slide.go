package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SlideType classifies a slide and selects its generation strategy.
type SlideType string

// The slide classification taxonomy. Every slide descriptor must carry one of
// these values; anything else fails descriptor validation.
const (
	SlideTypeTitle          SlideType = "title_slide"
	SlideTypeSectionDivider SlideType = "section_divider"
	SlideTypeClosing        SlideType = "closing_slide"
	SlideTypeContentBasic   SlideType = "content_basic"
	SlideTypeContentImage   SlideType = "content_image"
	SlideTypeBulletList     SlideType = "bullet_list"
	SlideTypeAgenda         SlideType = "agenda"
	SlideTypeMatrix2x2      SlideType = "matrix_2x2"
	SlideTypeMatrix3x3      SlideType = "matrix_3x3"
	SlideTypeTimeline       SlideType = "timeline"
	SlideTypeComparison     SlideType = "comparison"
	SlideTypeQuote          SlideType = "quote_slide"
	SlideTypeDataChart      SlideType = "data_chart"
)

// SlideFamily groups slide types that share a request shape: hero slides are
// generated element by element, content slides as a block layout.
type SlideFamily string

// Slide families.
const (
	SlideFamilyHero    SlideFamily = "hero"
	SlideFamilyContent SlideFamily = "content"
	// SlideFamilyUnknown is reported for types outside the taxonomy.
	SlideFamilyUnknown SlideFamily = ""
)

// Character ceilings for generated slide content, counted in runes.
// Violations are generation failures, never silent truncation.
const (
	MaxGeneratedTitleChars    = 50
	MaxGeneratedSubtitleChars = 90
	MaxFooterChars            = 20
)

// Common validation errors for Slide.
var (
	ErrEmptySlideID               = errors.New("slide ID cannot be empty")
	ErrGeneratedTitleEmpty        = errors.New("generated slide title cannot be empty")
	ErrGeneratedTitleTooLong      = errors.New("generated slide title exceeds character ceiling")
	ErrGeneratedSubtitleTooLong   = errors.New("generated slide subtitle exceeds character ceiling")
	ErrGeneratedContentAlreadySet = errors.New("generated slide content is write-once per run")
)

// Slide is one slide of a presentation: the descriptor fields that arrive with
// the outline (type, variant, layout, guidance, notes) plus the generated
// fields filled in by a successful stage run.
//
// Generated fields are write-once per run and are only set through
// SetGeneratedContent, which enforces the character ceilings.
type Slide struct {
	ID       uuid.UUID `json:"id"`
	Type     SlideType `json:"type"`
	Variant  string    `json:"variant"`
	LayoutID string    `json:"layout_id"`
	Guidance string    `json:"guidance"`
	// Notes holds optional speaker notes in markdown.
	Notes string `json:"notes,omitempty"`

	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	BodyHTML string `json:"body_html,omitempty"`

	Failed        bool          `json:"failed,omitempty"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`

	contentSet bool
}

// NewSlide creates a slide descriptor with a fresh ID. Descriptor completeness
// is deliberately not validated here: incomplete descriptors must remain
// constructible so a stage run can record a per-slide failure for them instead
// of rejecting the whole presentation.
func NewSlide(slideType SlideType, variant, layoutID, guidance, notes string) *Slide {
	return &Slide{
		ID:       uuid.New(),
		Type:     slideType,
		Variant:  variant,
		LayoutID: layoutID,
		Guidance: guidance,
		Notes:    notes,
	}
}

// SetGeneratedContent writes the generated fields onto the slide. It enforces
// the write-once rule and the title/subtitle character ceilings. Body HTML has
// no ceiling.
func (s *Slide) SetGeneratedContent(title, subtitle, bodyHTML string) error {
	if s.contentSet {
		return ErrGeneratedContentAlreadySet
	}
	if strings.TrimSpace(title) == "" {
		return ErrGeneratedTitleEmpty
	}
	if utf8.RuneCountInString(title) > MaxGeneratedTitleChars {
		return ErrGeneratedTitleTooLong
	}
	if utf8.RuneCountInString(subtitle) > MaxGeneratedSubtitleChars {
		return ErrGeneratedSubtitleTooLong
	}

	s.Title = title
	s.Subtitle = subtitle
	s.BodyHTML = bodyHTML
	s.Failed = false
	s.FailureReason = ""
	s.contentSet = true
	return nil
}

// MarkFailed flags the slide as failed for this run. The slide keeps its
// placeholder (descriptor) content; only the flag and reason are set.
func (s *Slide) MarkFailed(reason FailureReason) error {
	if !IsValidFailureReason(reason) {
		return ErrInvalidFailureReason
	}
	s.Failed = true
	s.FailureReason = reason
	return nil
}

// HasGeneratedContent reports whether generated content was written onto the
// slide during this run.
func (s *Slide) HasGeneratedContent() bool {
	return s.contentSet
}

// Family reports which request-shape family the slide type belongs to.
// Types outside the taxonomy report SlideFamilyUnknown.
func (t SlideType) Family() SlideFamily {
	switch t {
	case SlideTypeTitle, SlideTypeSectionDivider, SlideTypeClosing:
		return SlideFamilyHero
	case SlideTypeContentBasic, SlideTypeContentImage, SlideTypeBulletList,
		SlideTypeAgenda, SlideTypeMatrix2x2, SlideTypeMatrix3x3,
		SlideTypeTimeline, SlideTypeComparison, SlideTypeQuote,
		SlideTypeDataChart:
		return SlideFamilyContent
	default:
		return SlideFamilyUnknown
	}
}

// IsValidSlideType checks if the given type is part of the taxonomy.
func IsValidSlideType(t SlideType) bool {
	return t.Family() != SlideFamilyUnknown
}
