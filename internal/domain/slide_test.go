package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewSlide(t *testing.T) {
	t.Parallel()

	s := NewSlide(SlideTypeMatrix2x2, "content", "L-MATRIX-04", "strengths vs risks", "speaker notes")

	if s.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if s.Type != SlideTypeMatrix2x2 {
		t.Errorf("Expected type %s, got %s", SlideTypeMatrix2x2, s.Type)
	}

	if s.HasGeneratedContent() {
		t.Error("New slide should not report generated content")
	}

	// Incomplete descriptors stay constructible; completeness is a stage-run
	// concern.
	incomplete := NewSlide("", "", "", "", "")
	if incomplete.ID == uuid.Nil {
		t.Error("Expected non-nil UUID for incomplete descriptor")
	}
}

func TestSlideTypeFamily(t *testing.T) {
	t.Parallel()

	heroTypes := []SlideType{SlideTypeTitle, SlideTypeSectionDivider, SlideTypeClosing}
	for _, st := range heroTypes {
		if st.Family() != SlideFamilyHero {
			t.Errorf("Expected %s to be in hero family, got %s", st, st.Family())
		}
	}

	contentTypes := []SlideType{
		SlideTypeContentBasic, SlideTypeContentImage, SlideTypeBulletList,
		SlideTypeAgenda, SlideTypeMatrix2x2, SlideTypeMatrix3x3,
		SlideTypeTimeline, SlideTypeComparison, SlideTypeQuote, SlideTypeDataChart,
	}
	for _, st := range contentTypes {
		if st.Family() != SlideFamilyContent {
			t.Errorf("Expected %s to be in content family, got %s", st, st.Family())
		}
	}

	if SlideType("pie_chart_3d").Family() != SlideFamilyUnknown {
		t.Error("Expected unknown type to report SlideFamilyUnknown")
	}

	if IsValidSlideType("pie_chart_3d") {
		t.Error("Expected pie_chart_3d to be outside the taxonomy")
	}

	if !IsValidSlideType(SlideTypeQuote) {
		t.Error("Expected quote_slide to be part of the taxonomy")
	}
}

func TestSetGeneratedContent(t *testing.T) {
	t.Parallel()

	t.Run("sets content once", func(t *testing.T) {
		t.Parallel()
		s := NewSlide(SlideTypeTitle, "hero", "L-TITLE-01", "guidance", "")

		err := s.SetGeneratedContent("Quarter in Review", "Momentum across every team", "<div>body</div>")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if s.Title != "Quarter in Review" {
			t.Errorf("Expected title to be set, got %q", s.Title)
		}
		if !s.HasGeneratedContent() {
			t.Error("Expected HasGeneratedContent to be true")
		}

		// Second write must be rejected.
		err = s.SetGeneratedContent("Another Title", "", "")
		if !errors.Is(err, ErrGeneratedContentAlreadySet) {
			t.Errorf("Expected ErrGeneratedContentAlreadySet, got %v", err)
		}
		if s.Title != "Quarter in Review" {
			t.Errorf("Rejected write must not change content, got %q", s.Title)
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()
		s := NewSlide(SlideTypeTitle, "hero", "L-TITLE-01", "guidance", "")
		err := s.SetGeneratedContent("  ", "sub", "<div></div>")
		if !errors.Is(err, ErrGeneratedTitleEmpty) {
			t.Errorf("Expected ErrGeneratedTitleEmpty, got %v", err)
		}
	})

	t.Run("rejects title over ceiling", func(t *testing.T) {
		t.Parallel()
		s := NewSlide(SlideTypeTitle, "hero", "L-TITLE-01", "guidance", "")
		err := s.SetGeneratedContent(strings.Repeat("a", MaxGeneratedTitleChars+1), "", "")
		if !errors.Is(err, ErrGeneratedTitleTooLong) {
			t.Errorf("Expected ErrGeneratedTitleTooLong, got %v", err)
		}
		if s.HasGeneratedContent() {
			t.Error("Failed write must not latch content")
		}
	})

	t.Run("rejects subtitle over ceiling", func(t *testing.T) {
		t.Parallel()
		s := NewSlide(SlideTypeTitle, "hero", "L-TITLE-01", "guidance", "")
		err := s.SetGeneratedContent("Title", strings.Repeat("b", MaxGeneratedSubtitleChars+1), "")
		if !errors.Is(err, ErrGeneratedSubtitleTooLong) {
			t.Errorf("Expected ErrGeneratedSubtitleTooLong, got %v", err)
		}
	})

	t.Run("ceilings count runes not bytes", func(t *testing.T) {
		t.Parallel()
		s := NewSlide(SlideTypeTitle, "hero", "L-TITLE-01", "guidance", "")
		// 50 two-byte runes: 100 bytes, exactly at the rune ceiling.
		err := s.SetGeneratedContent(strings.Repeat("é", MaxGeneratedTitleChars), "", "")
		if err != nil {
			t.Fatalf("Expected rune-counted title at ceiling to pass, got %v", err)
		}
	})
}

func TestMarkFailed(t *testing.T) {
	t.Parallel()

	s := NewSlide(SlideTypeDataChart, "content", "L-CHART-01", "revenue trend", "")

	if err := s.MarkFailed(FailureReasonTimeout); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !s.Failed {
		t.Error("Expected slide to be flagged failed")
	}

	if s.FailureReason != FailureReasonTimeout {
		t.Errorf("Expected reason %s, got %s", FailureReasonTimeout, s.FailureReason)
	}

	if s.Title != "" {
		t.Errorf("Failed slide must keep placeholder content, got title %q", s.Title)
	}

	if err := s.MarkFailed("melted"); !errors.Is(err, ErrInvalidFailureReason) {
		t.Errorf("Expected ErrInvalidFailureReason, got %v", err)
	}
}
