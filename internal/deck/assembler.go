package deck

import (
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ajstarks/deck/generate"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// ErrNilPresentation is returned when a renderer is handed a nil presentation.
var ErrNilPresentation = errors.New("presentation cannot be nil")

// Canvas dimensions for generated deck markup, in the pixel units the deck
// renderers expect.
const (
	canvasWidth  = 1024
	canvasHeight = 768
)

// Layout coordinates are percentages of the canvas with the origin at the
// lower left corner, following deck markup conventions.
const (
	contentLeft         = 8.0
	contentTitleY       = 86.0
	contentTitleSize    = 4.2
	contentSubtitleY    = 80.5
	contentSubtitleSize = 2.4
	ruleY               = 77.0
	bodyTopY            = 71.0
	bodyLeading         = 5.2
	bodyFloorY          = 12.0
	bodySize            = 2.5
	bodyWrapRunes       = 72

	heroTitleY       = 55.0
	heroTitleSize    = 7.0
	heroSubtitleY    = 43.0
	heroSubtitleSize = 3.0

	footerY    = 4.0
	footerSize = 1.5
)

type palette struct {
	bg     string
	fg     string
	accent string
	muted  string
}

var (
	heroColors    = palette{bg: "rgb(18,32,52)", fg: "white", accent: "rgb(120,180,230)", muted: "rgb(160,170,185)"}
	contentColors = palette{bg: "white", fg: "rgb(30,30,30)", accent: "rgb(0,112,184)", muted: "rgb(130,130,130)"}
)

// Assembler renders an enriched presentation as deck markup XML.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an assembler. A nil logger falls back to the default
// logger.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		logger: logger.With(slog.String("component", "deck_assembler")),
	}
}

// Assemble writes the presentation as deck markup. Slide order is preserved;
// slides that carry no generated content are rendered as placeholders so the
// deck keeps its shape.
func (a *Assembler) Assemble(w io.Writer, p *domain.Presentation) error {
	if p == nil {
		return ErrNilPresentation
	}

	ew := &errWriter{w: w}
	d := generate.NewSlides(ew, canvasWidth, canvasHeight)
	d.StartDeck()

	total := len(p.Slides)
	for i, slide := range p.Slides {
		a.renderSlide(d, p.Footer, slide, i+1, total)
	}

	d.EndDeck()
	if ew.err != nil {
		return fmt.Errorf("failed to write deck markup: %w", ew.err)
	}

	a.logger.Debug("assembled deck markup",
		slog.String("presentation_id", p.ID.String()),
		slog.Int("slide_count", total))
	return nil
}

func (a *Assembler) renderSlide(d *generate.Deck, footer string, s *domain.Slide, number, total int) {
	colors := contentColors
	if s.Type.Family() == domain.SlideFamilyHero {
		colors = heroColors
	}
	d.StartSlide(colors.bg, colors.fg)

	switch {
	case !s.HasGeneratedContent():
		a.renderPlaceholder(d, s, colors)
	case s.Type.Family() == domain.SlideFamilyHero:
		renderHero(d, s, colors)
	default:
		renderContent(d, s, colors)
	}

	if footer != "" {
		d.Text(contentLeft, footerY, footer, "sans", footerSize, colors.muted)
	}
	d.TextEnd(100-contentLeft, footerY, fmt.Sprintf("%d / %d", number, total), "sans", footerSize, colors.muted)

	d.EndSlide()
}

func renderHero(d *generate.Deck, s *domain.Slide, colors palette) {
	d.TextMid(50, heroTitleY, s.Title, "sans", heroTitleSize, colors.fg)
	if s.Subtitle != "" {
		d.TextMid(50, heroSubtitleY, s.Subtitle, "sans", heroSubtitleSize, colors.accent)
	}
}

func renderContent(d *generate.Deck, s *domain.Slide, colors palette) {
	d.Text(contentLeft, contentTitleY, s.Title, "sans", contentTitleSize, colors.fg)
	if s.Subtitle != "" {
		d.Text(contentLeft, contentSubtitleY, s.Subtitle, "sans", contentSubtitleSize, colors.muted)
	}
	d.Line(contentLeft, ruleY, 100-contentLeft, ruleY, 0.12, colors.accent)

	font := "sans"
	if s.Type == domain.SlideTypeQuote {
		font = "serif"
	}

	y := bodyTopY
	for _, line := range bodyLines(s.BodyHTML) {
		if y < bodyFloorY {
			break
		}
		d.Text(contentLeft, y, line, font, bodySize, colors.fg)
		y -= bodyLeading
	}
}

func (a *Assembler) renderPlaceholder(d *generate.Deck, s *domain.Slide, colors palette) {
	a.logger.Debug("rendering placeholder for slide without content",
		slog.String("slide_id", s.ID.String()),
		slog.String("slide_type", string(s.Type)))

	d.Text(contentLeft, contentTitleY, typeLabel(s.Type), "sans", contentTitleSize, colors.muted)
	d.Line(contentLeft, ruleY, 100-contentLeft, ruleY, 0.12, colors.muted)
	d.Text(contentLeft, bodyTopY, placeholderBody(s), "sans", bodySize, colors.muted)
}

// typeLabel renders a slide type as a human readable placeholder title, e.g.
// "data_chart" becomes "Data Chart".
func typeLabel(t domain.SlideType) string {
	words := strings.Fields(strings.ReplaceAll(string(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func placeholderBody(s *domain.Slide) string {
	if s.Failed && s.FailureReason != "" {
		return "Content unavailable: " + strings.ReplaceAll(string(s.FailureReason), "_", " ")
	}
	return "Content unavailable."
}

// Generated body content arrives as an HTML fragment, but deck markup wants
// plain text lines. Block boundaries become line breaks, list items keep a
// bullet prefix, and any remaining tags are stripped.
var (
	listItemRe = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	blockEndRe = regexp.MustCompile(`(?i)</(?:p|div|h[1-6]|tr|ul|ol|blockquote)>|<br\s*/?>`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
)

func bodyLines(bodyHTML string) []string {
	if strings.TrimSpace(bodyHTML) == "" {
		return nil
	}

	text := listItemRe.ReplaceAllString(bodyHTML, "\n• $1\n")
	text = blockEndRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			continue
		}
		lines = append(lines, wrapLine(line, bodyWrapRunes)...)
	}
	return lines
}

// wrapLine greedily wraps a line on word boundaries so that no emitted line
// exceeds the rune limit. Words longer than the limit stay unbroken.
func wrapLine(line string, limit int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	var (
		wrapped []string
		current strings.Builder
		runes   int
	)
	for _, word := range words {
		wl := utf8.RuneCountInString(word)
		if runes > 0 && runes+1+wl > limit {
			wrapped = append(wrapped, current.String())
			current.Reset()
			runes = 0
		}
		if runes > 0 {
			current.WriteByte(' ')
			runes++
		}
		current.WriteString(word)
		runes += wl
	}
	return append(wrapped, current.String())
}

// errWriter latches the first write failure so markup generation can run to
// completion and report it once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	if err != nil {
		e.err = err
	}
	return n, err
}
