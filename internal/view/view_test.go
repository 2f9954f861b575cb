package view

import (
	"strings"
	"testing"

	"github.com/hahnmechanical/site/internal/db"
)

func TestNeighborsWrap(t *testing.T) {
	cases := []struct {
		index, n, prev, next int
	}{
		{0, 5, 4, 1},
		{4, 5, 3, 0},
		{2, 5, 1, 3},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
	}
	for _, tc := range cases {
		prev, next := Neighbors(tc.index, tc.n)
		if prev != tc.prev || next != tc.next {
			t.Fatalf("Neighbors(%d, %d) = (%d, %d), want (%d, %d)", tc.index, tc.n, prev, next, tc.prev, tc.next)
		}
	}
}

func TestCategoryLabels(t *testing.T) {
	if got := CategoryLabel(db.GalleryCategoryMiniSplits); got != "Mini Splits" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := CategoryLabel("legacy_value"); got != "legacy_value" {
		t.Fatalf("expected raw value fallback, got %q", got)
	}
	options := CategoryOptions()
	if len(options) != 6 || options[0].Value != db.GalleryCategoryNewConstruction {
		t.Fatalf("unexpected options %+v", options)
	}
}

func TestServiceCatalog(t *testing.T) {
	services := Services()
	if len(services) != 6 {
		t.Fatalf("expected 6 services, got %d", len(services))
	}
	for _, svc := range services {
		if svc.Title == "" || svc.ShortDesc == "" || len(svc.Features) == 0 || svc.Icon == "" {
			t.Fatalf("incomplete service entry %+v", svc)
		}
		if !db.IsGalleryCategory(svc.Category) {
			t.Fatalf("service %s maps to unknown category %s", svc.Title, svc.Category)
		}
	}

	services[0].Title = "mutated"
	if Services()[0].Title == "mutated" {
		t.Fatalf("expected Services to return a copy")
	}

	item, ok := ServiceByTitle("duct removal & replacement")
	if !ok || item.Slug != "ductwork" {
		t.Fatalf("expected case-insensitive lookup, got %+v %v", item, ok)
	}
	if got := item.InquiryPath(); got != "/service-inquiry?service=Duct+Removal+%26+Replacement" {
		t.Fatalf("unexpected inquiry path %q", got)
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**Fast** service<script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>Fast</strong>") {
		t.Fatalf("expected markdown to render, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be stripped, got %q", out)
	}
}
