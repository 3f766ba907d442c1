package generation

import (
	"fmt"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// Strategy names attached to routed requests.
const (
	StrategyHeroLayout     = "hero_layout"
	StrategyBlockContent   = "block_content"
	StrategyGenericContent = "generic_content"
)

// Router binds generation requests to the versioned endpoint implementing
// their generation strategy. Routing is deterministic: the same classification
// and variant always route to the same endpoint.
type Router struct {
	version string
}

// NewRouter creates a router for the given service protocol version
// (for example "v1").
func NewRouter(version string) (*Router, error) {
	if version == "" {
		return nil, fmt.Errorf("%w: service protocol version is required", ErrInvalidConfig)
	}
	return &Router{version: version}, nil
}

// Route selects the endpoint and strategy for a request by slide family.
// Hero slides route to the element-based endpoint, content slides to the
// block-based one. Anything unrecognized falls back to the generic content
// endpoint so a routing gap stays a single-slide concern. Route attaches the
// destination without modifying request content.
func (r *Router) Route(req GenerationRequest) RoutedRequest {
	routed := RoutedRequest{Request: req}

	switch domain.SlideType(req.SlideType).Family() {
	case domain.SlideFamilyHero:
		routed.Endpoint = fmt.Sprintf("/%s/slides/hero", r.version)
		routed.Strategy = StrategyHeroLayout
	case domain.SlideFamilyContent:
		routed.Endpoint = fmt.Sprintf("/%s/slides/block", r.version)
		routed.Strategy = StrategyBlockContent
	default:
		routed.Endpoint = fmt.Sprintf("/%s/slides/generic", r.version)
		routed.Strategy = StrategyGenericContent
	}

	return routed
}
