package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/slatefield/deckgen-api/internal/generation"
)

// heroPromptTemplate asks for element-based hero slide content.
const heroPromptTemplate = `You write presentation slide copy. Generate the content for one hero slide of the deck "{{.DeckTitle}}".

Slide type: {{.SlideType}}, variant: {{.Variant}}, layout: {{.LayoutID}}.
Requested elements:
{{- range .Elements}}
- {{.Role}}: {{.Guidance}}
{{- end}}

Respond with exactly one JSON object and nothing else:
{"title": "...", "subtitle": "...", "html": ""}
The title must be at most 50 characters and the subtitle at most 90 characters. Omitted elements get an empty string.`

// blockPromptTemplate asks for block-based content slide copy.
const blockPromptTemplate = `You write presentation slide copy. Generate the content for one content slide of the deck "{{.DeckTitle}}".

Slide type: {{.SlideType}}, variant: {{.Variant}}, layout: {{.LayoutID}}, density: {{.Density}}.
Content blocks:
{{- range .Blocks}}
- {{.Kind}}: {{.Guidance}}
{{- end}}

Respond with exactly one JSON object and nothing else:
{"title": "...", "subtitle": "...", "html": "<div>...</div>"}
The title must be at most 50 characters, the subtitle at most 90 characters, and html must be a self-contained fragment matching the layout.`

var (
	heroPrompt  = template.Must(template.New("hero").Parse(heroPromptTemplate))
	blockPrompt = template.Must(template.New("block").Parse(blockPromptTemplate))
)

// buildPrompt renders the prompt for a routed request. Hero-layout requests
// use the element template; everything else uses the block template.
func buildPrompt(req generation.RoutedRequest) (string, error) {
	tmpl := blockPrompt
	if req.Strategy == generation.StrategyHeroLayout {
		tmpl = heroPrompt
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req.Request); err != nil {
		return "", fmt.Errorf("%w: rendering prompt: %v", generation.ErrInvalidConfig, err)
	}
	return buf.String(), nil
}

// parseResponse extracts the JSON payload from model output. Models sometimes
// wrap JSON in markdown fences even when asked not to; those are stripped
// before unmarshaling.
func parseResponse(text string) (*generation.GenerationResponse, error) {
	cleaned := stripFences(text)

	var resp generation.GenerationResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: model output is not valid JSON: %v", generation.ErrInvalidResponse, err)
	}
	return &resp, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
