package deck

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/yuin/goldmark"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// PreviewRenderer renders an enriched presentation as a standalone HTML page.
// Generated body fragments are embedded as produced; speaker notes are
// markdown and get converted to HTML.
type PreviewRenderer struct {
	logger *slog.Logger
	tmpl   *template.Template
}

// NewPreviewRenderer creates a preview renderer. A nil logger falls back to
// the default logger.
func NewPreviewRenderer(logger *slog.Logger) *PreviewRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewRenderer{
		logger: logger.With(slog.String("component", "preview_renderer")),
		tmpl:   template.Must(template.New("preview").Parse(previewTemplate)),
	}
}

type previewPage struct {
	Title  string
	Footer string
	Slides []previewSlide
}

type previewSlide struct {
	Number    int
	Hero      bool
	Failed    bool
	TypeLabel string
	Title     string
	Subtitle  string
	Body      template.HTML
	Notes     template.HTML
	Reason    string
}

// Render writes a standalone HTML page for the presentation.
func (r *PreviewRenderer) Render(w io.Writer, p *domain.Presentation) error {
	if p == nil {
		return ErrNilPresentation
	}

	page := previewPage{Title: p.Title, Footer: p.Footer}
	for i, slide := range p.Slides {
		view := previewSlide{
			Number:    i + 1,
			Hero:      slide.Type.Family() == domain.SlideFamilyHero,
			Failed:    !slide.HasGeneratedContent(),
			TypeLabel: typeLabel(slide.Type),
			Title:     slide.Title,
			Subtitle:  slide.Subtitle,
			Body:      template.HTML(slide.BodyHTML),
		}
		if view.Failed {
			view.Body = ""
			view.Reason = placeholderBody(slide)
		}
		if slide.Notes != "" {
			rendered, err := notesHTML(slide.Notes)
			if err != nil {
				return fmt.Errorf("failed to render notes for slide %d: %w", i+1, err)
			}
			view.Notes = rendered
		}
		page.Slides = append(page.Slides, view)
	}

	if err := r.tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	r.logger.Debug("rendered preview page",
		slog.String("presentation_id", p.ID.String()),
		slog.Int("slide_count", len(page.Slides)))
	return nil
}

func notesHTML(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #e8eaed; color: #202124; font-family: "Helvetica Neue", Arial, sans-serif; }
header { padding: 24px 48px 8px; }
header h1 { margin: 0 0 4px; font-size: 28px; }
header .footer-note { margin: 0; color: #5f6368; }
section.slide { background: #fff; margin: 24px 48px; padding: 32px 40px 24px; border-radius: 6px; box-shadow: 0 1px 4px rgba(0,0,0,0.18); position: relative; }
section.slide.hero { background: #12203a; color: #fff; text-align: center; padding: 64px 40px; }
section.slide.hero h3 { color: #78b4e6; }
section.slide.failed h2 { color: #9aa0a6; }
section.slide h2 { margin: 0 0 6px; font-size: 24px; }
section.slide h3 { margin: 0 0 12px; font-size: 16px; font-weight: normal; color: #5f6368; }
section.slide .body { font-size: 15px; line-height: 1.5; }
section.slide .reason { color: #b3261e; font-style: italic; }
aside.notes { margin-top: 20px; padding: 12px 16px; background: #fef7e0; border-radius: 4px; font-size: 13px; color: #3c4043; text-align: left; }
aside.notes h4 { margin: 0 0 6px; font-size: 12px; text-transform: uppercase; letter-spacing: 0.08em; color: #9a6e00; }
span.number { position: absolute; right: 16px; bottom: 10px; font-size: 12px; color: #9aa0a6; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
{{if .Footer}}<p class="footer-note">{{.Footer}}</p>{{end}}
</header>
{{range .Slides}}
<section class="slide{{if .Hero}} hero{{end}}{{if .Failed}} failed{{end}}">
<h2>{{if .Title}}{{.Title}}{{else}}{{.TypeLabel}}{{end}}</h2>
{{if .Subtitle}}<h3>{{.Subtitle}}</h3>{{end}}
{{if .Failed}}<p class="reason">{{.Reason}}</p>{{else}}<div class="body">{{.Body}}</div>{{end}}
{{if .Notes}}<aside class="notes"><h4>Speaker notes</h4>{{.Notes}}</aside>{{end}}
<span class="number">{{.Number}}</span>
</section>
{{end}}
</body>
</html>
`
