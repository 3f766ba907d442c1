package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatefield/deckgen-api/internal/domain"
)

func testPresentation(t *testing.T, footer string, slides ...*domain.Slide) *domain.Presentation {
	t.Helper()
	p, err := domain.NewPresentation("Annual Review", footer, slides)
	require.NoError(t, err)
	return p
}

func TestTransformHeroFamily(t *testing.T) {
	t.Parallel()

	slide := domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "open with the theme", "")
	p := testPresentation(t, "ACME · 2025", slide)

	req, err := Transform(p, slide)
	require.NoError(t, err)

	assert.Equal(t, "title_slide", req.SlideType)
	assert.Equal(t, VariantHero, req.Variant)
	assert.Equal(t, "L-TITLE-01", req.LayoutID)
	assert.Equal(t, "Annual Review", req.DeckTitle)
	assert.Equal(t, "ACME · 2025", req.Footer)

	require.Len(t, req.Elements, 2, "hero variant requests title and subtitle elements")
	assert.Equal(t, ElementRoleTitle, req.Elements[0].Role)
	assert.Equal(t, "open with the theme", req.Elements[0].Guidance)
	assert.Equal(t, ElementRoleSubtitle, req.Elements[1].Role)
	assert.Empty(t, req.Blocks, "hero requests carry no blocks")
}

func TestTransformHeroMinimalVariant(t *testing.T) {
	t.Parallel()

	slide := domain.NewSlide(domain.SlideTypeClosing, VariantMinimal, "L-CLOSE-02", "thank the audience", "")
	p := testPresentation(t, "", slide)

	req, err := Transform(p, slide)
	require.NoError(t, err)

	require.Len(t, req.Elements, 1, "minimal variant requests a title element only")
	assert.Equal(t, ElementRoleTitle, req.Elements[0].Role)
}

func TestTransformContentFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		variant     string
		wantDensity string
	}{
		{name: "content variant", variant: VariantContent, wantDensity: DensityStandard},
		{name: "visual variant", variant: VariantVisual, wantDensity: DensityVisual},
		{name: "dense variant", variant: VariantDense, wantDensity: DensityDense},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			slide := domain.NewSlide(domain.SlideTypeMatrix2x2, tc.variant, "L-MATRIX-04", "strengths vs risks", "")
			p := testPresentation(t, "", slide)

			req, err := Transform(p, slide)
			require.NoError(t, err)

			assert.Equal(t, tc.wantDensity, req.Density)
			require.Len(t, req.Blocks, 2)
			assert.Equal(t, BlockKindHeading, req.Blocks[0].Kind)
			assert.Equal(t, BlockKindBody, req.Blocks[1].Kind)
			assert.Equal(t, "strengths vs risks", req.Blocks[1].Guidance)
			assert.Empty(t, req.Elements, "content requests carry no elements")
		})
	}
}

func TestTransformUnknownVariant(t *testing.T) {
	t.Parallel()

	t.Run("variant with no mapping", func(t *testing.T) {
		t.Parallel()
		slide := domain.NewSlide(domain.SlideTypeBulletList, "holographic", "L-LIST-02", "guidance", "")
		p := testPresentation(t, "", slide)

		_, err := Transform(p, slide)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownVariant)
		assert.Contains(t, err.Error(), "holographic")
	})

	t.Run("hero variant on content family has no mapping", func(t *testing.T) {
		t.Parallel()
		slide := domain.NewSlide(domain.SlideTypeBulletList, VariantHero, "L-LIST-02", "guidance", "")
		p := testPresentation(t, "", slide)

		_, err := Transform(p, slide)
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})
}

func TestTransformFooterTruncation(t *testing.T) {
	t.Parallel()

	slide := domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "guidance", "")
	// Built directly: NewPresentation rejects over-ceiling footers at entry,
	// so the struct literal is the only way to reach the transformer's clip.
	p := &domain.Presentation{
		Title:  "Deck",
		Footer: strings.Repeat("é", domain.MaxFooterChars+5),
		Slides: []*domain.Slide{slide},
	}

	req, err := Transform(p, slide)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxFooterChars, len([]rune(req.Footer)), "footer clipped to rune ceiling")
	assert.Equal(t, strings.Repeat("é", domain.MaxFooterChars), req.Footer)
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Equal(t, "", truncateRunes("", 3))
}
