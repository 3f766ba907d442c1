package generation

import (
	"fmt"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// ValidateDescriptor checks that a slide descriptor carries everything a
// generation request needs: a classification inside the taxonomy, a variant,
// a layout, and content guidance. Checks run in that order and the first
// failure wins, so an unusable slide reports its most fundamental gap.
//
// The check is pure: it never touches generated fields (they do not exist
// before generation) and never mutates the slide. A failure here is recorded
// as a per-slide outcome, not a run failure.
func ValidateDescriptor(slide *domain.Slide) error {
	if slide.Type == "" {
		return fmt.Errorf("%w: classification", ErrMissingField)
	}
	if !domain.IsValidSlideType(slide.Type) {
		return fmt.Errorf("%w: classification %q is not in the taxonomy", ErrMissingField, slide.Type)
	}
	if slide.Variant == "" {
		return fmt.Errorf("%w: variant", ErrMissingField)
	}
	if slide.LayoutID == "" {
		return fmt.Errorf("%w: layout", ErrMissingField)
	}
	if slide.Guidance == "" {
		return fmt.Errorf("%w: guidance", ErrMissingField)
	}
	return nil
}
