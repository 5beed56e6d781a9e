// Package pages renders the dashboard HTML page: the layout description as markdown and one
// card per chart.
package pages

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"chartsync/internal/models"
	"chartsync/internal/registry"
)

// Builder renders dashboard pages
type Builder struct {
	goldmark goldmark.Markdown
	page     *template.Template
	version  string
}

// Card is one chart on the page
type Card struct {
	Anchor  string
	Title   string
	Kind    string
	Group   string
	Width   int
	Height  int
	Filters string
}

// PageData is what the page template is executed with
type PageData struct {
	Title       string
	Description template.HTML
	GeneratedAt string
	Version     string
	Groups      []GroupCards
	Snapshots   []string
}

// GroupCards holds the cards of one chart group
type GroupCards struct {
	Name  string
	Label string
	Cards []Card
}

// NewBuilder creates a builder with GitHub-flavored markdown
func NewBuilder(version string) *Builder {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	return &Builder{
		goldmark: md,
		page:     template.Must(template.New("dashboard").Parse(pageTemplate)),
		version:  version,
	}
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (b *Builder) ConvertMarkdownToHTML(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := b.goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	// raw HTML in the description is dropped by the renderer
	return template.HTML(buf.String()), nil
}

// Build renders the page for layout. Cards are grouped by chart group in layout order.
func (b *Builder) Build(layout *models.Layout, cards []Card, snapshots []string) ([]byte, error) {
	description, err := b.ConvertMarkdownToHTML(layout.Description)
	if err != nil {
		return nil, err
	}

	data := PageData{
		Title:       layout.Title,
		Description: description,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		Version:     b.version,
		Groups:      groupCards(cards),
		Snapshots:   snapshots,
	}
	if data.Title == "" {
		data.Title = "Dashboard"
	}

	var buf bytes.Buffer
	if err := b.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

func groupCards(cards []Card) []GroupCards {
	var groups []GroupCards
	index := make(map[string]int)
	for _, c := range cards {
		if c.Title == "" {
			c.Title = TitleFromAnchor(c.Anchor)
		}
		i, ok := index[c.Group]
		if !ok {
			i = len(groups)
			index[c.Group] = i
			groups = append(groups, GroupCards{Name: c.Group, Label: groupLabel(c.Group)})
		}
		groups[i].Cards = append(groups[i].Cards, c)
	}
	return groups
}

func groupLabel(name string) string {
	if name == "" || name == registry.DefaultGroup {
		return "Charts"
	}
	return TitleFromAnchor(name)
}

// TitleFromAnchor turns "payment_type" or "payment-type" into "Payment Type"
func TitleFromAnchor(anchor string) string {
	words := strings.FieldsFunc(anchor, func(r rune) bool { return r == '_' || r == '-' || unicode.IsSpace(r) })
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
