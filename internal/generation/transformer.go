package generation

import (
	"fmt"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// Known variant identifiers per family.
const (
	VariantHero    = "hero"
	VariantMinimal = "minimal"
	VariantContent = "content"
	VariantVisual  = "visual"
	VariantDense   = "dense"
)

// mappingKey selects a request builder by slide family and variant.
type mappingKey struct {
	family  domain.SlideFamily
	variant string
}

// builderFunc fills the family-specific portion of a generation request.
type builderFunc func(req *GenerationRequest, slide *domain.Slide)

// requestBuilders is the transformation mapping. A (family, variant) pair with
// no entry is a configuration gap, reported as ErrUnknownVariant so it is
// distinguishable from service trouble in logs and outcomes.
var requestBuilders = map[mappingKey]builderFunc{
	{domain.SlideFamilyHero, VariantHero}: func(req *GenerationRequest, slide *domain.Slide) {
		req.Elements = []HeroElement{
			{Role: ElementRoleTitle, Guidance: slide.Guidance},
			{Role: ElementRoleSubtitle, Guidance: slide.Guidance},
		}
	},
	{domain.SlideFamilyHero, VariantMinimal}: func(req *GenerationRequest, slide *domain.Slide) {
		req.Elements = []HeroElement{
			{Role: ElementRoleTitle, Guidance: slide.Guidance},
		}
	},
	{domain.SlideFamilyContent, VariantContent}: func(req *GenerationRequest, slide *domain.Slide) {
		req.Blocks = contentBlocks(slide)
		req.Density = DensityStandard
	},
	{domain.SlideFamilyContent, VariantVisual}: func(req *GenerationRequest, slide *domain.Slide) {
		req.Blocks = contentBlocks(slide)
		req.Density = DensityVisual
	},
	{domain.SlideFamilyContent, VariantDense}: func(req *GenerationRequest, slide *domain.Slide) {
		req.Blocks = contentBlocks(slide)
		req.Density = DensityDense
	},
}

func contentBlocks(slide *domain.Slide) []ContentBlock {
	return []ContentBlock{
		{Kind: BlockKindHeading, Guidance: slide.Guidance},
		{Kind: BlockKindBody, Guidance: slide.Guidance},
	}
}

// Transform converts a validated slide descriptor into the generation
// service's request shape for its (family, variant) mapping. Every request
// carries the deck title, the layout identifier, and the presentation footer
// clipped to its character ceiling.
func Transform(p *domain.Presentation, slide *domain.Slide) (GenerationRequest, error) {
	key := mappingKey{family: slide.Type.Family(), variant: slide.Variant}
	build, ok := requestBuilders[key]
	if !ok {
		return GenerationRequest{}, fmt.Errorf("%w: %q for %s slides",
			ErrUnknownVariant, slide.Variant, key.family)
	}

	req := GenerationRequest{
		SlideType: string(slide.Type),
		Variant:   slide.Variant,
		LayoutID:  slide.LayoutID,
		DeckTitle: p.Title,
		Footer:    truncateRunes(p.Footer, domain.MaxFooterChars),
	}
	build(&req, slide)
	return req, nil
}

// truncateRunes clips s to at most max runes. Footer text is the one place
// where clipping is allowed; generated content is rejected instead.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
