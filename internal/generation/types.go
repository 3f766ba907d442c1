package generation

// Element roles and block kinds used in generation requests.
const (
	ElementRoleTitle    = "title"
	ElementRoleSubtitle = "subtitle"

	BlockKindHeading = "heading"
	BlockKindBody    = "body"
)

// Density hints attached to block-based requests.
const (
	DensityStandard = "standard"
	DensityVisual   = "visual"
	DensityDense    = "dense"
)

// HeroElement is one element slot of an element-based (hero family) request.
type HeroElement struct {
	Role     string `json:"role"`
	Guidance string `json:"guidance"`
}

// ContentBlock is one content slot of a block-based (content family) request.
type ContentBlock struct {
	Kind     string `json:"kind"`
	Guidance string `json:"guidance"`
}

// GenerationRequest is the service-ready payload for one slide. It is built
// only by the transformer and treated as immutable once built: it is passed by
// value and no stage component modifies it after construction.
type GenerationRequest struct {
	SlideType string `json:"slide_type"`
	Variant   string `json:"variant"`
	LayoutID  string `json:"layout"`
	DeckTitle string `json:"deck_title"`
	Footer    string `json:"footer,omitempty"`

	// Exactly one of Elements or Blocks is populated, depending on family.
	Elements []HeroElement  `json:"elements,omitempty"`
	Blocks   []ContentBlock `json:"blocks,omitempty"`

	Density string `json:"density,omitempty"`
}

// RoutedRequest is a GenerationRequest bound to a destination: the versioned
// endpoint path and the named strategy the router selected. Routing never
// modifies request content.
type RoutedRequest struct {
	Request  GenerationRequest
	Endpoint string
	Strategy string
}

// GenerationResponse is the content returned by a generation backend for one
// slide. Callers must validate it before use: a non-error response is not
// guaranteed to respect the character ceilings or to be non-empty.
type GenerationResponse struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	BodyHTML string `json:"html,omitempty"`
}
