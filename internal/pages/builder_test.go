package pages

import (
	"strings"
	"testing"

	"chartsync/internal/models"
	"chartsync/internal/registry"
)

func TestConvertMarkdownToHTML(t *testing.T) {
	b := NewBuilder("1.0.0")
	got, err := b.ConvertMarkdownToHTML("Tips by **type**\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Failed to convert markdown: %v", err)
	}
	html := string(got)
	if !strings.Contains(html, "<strong>type</strong>") {
		t.Errorf("Expected bold text, got %s", html)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("Expected GFM table, got %s", html)
	}
}

func TestBuildGroupsCards(t *testing.T) {
	b := NewBuilder("1.2.3")
	layout := &models.Layout{Title: "Payments", Description: "Tips by **payment type**"}
	cards := []Card{
		{Anchor: "payment_type", Kind: "pie", Group: registry.DefaultGroup, Width: 300, Height: 300, Filters: "Filtered: visa"},
		{Anchor: "matrix", Title: "Type x Quantity", Kind: "heatmap", Group: "detail"},
		{Anchor: "total", Kind: "bar", Group: registry.DefaultGroup},
	}

	page, err := b.Build(layout, cards, []string{"q3"})
	if err != nil {
		t.Fatalf("Failed to build page: %v", err)
	}
	html := string(page)

	for _, want := range []string{
		"<title>Payments</title>",
		"<strong>payment type</strong>",
		`src="/charts/payment_type.png"`,
		"Payment Type",
		"Type x Quantity",
		"Filtered: visa",
		"Detail",
		"restore(",
		"v1.2.3",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Index(html, "payment_type.png") > strings.Index(html, "total.png") {
		t.Error("Expected cards in layout order")
	}
	if strings.Index(html, "total.png") > strings.Index(html, "matrix.png") {
		t.Error("Expected the default group before the detail group")
	}
}

func TestTitleFromAnchor(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"payment_type", "Payment Type"},
		{"tips-by-HOUR", "Tips By Hour"},
		{"total", "Total"},
		{"", ""},
	}
	for _, test := range tests {
		if got := TitleFromAnchor(test.in); got != test.expected {
			t.Errorf("TitleFromAnchor(%q): expected %q, got %q", test.in, test.expected, got)
		}
	}
}
