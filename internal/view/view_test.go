package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chezflora/flora-admin/internal/shared"
)

func TestNewEngineParsesEmbeddedTemplates(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	res := httptest.NewRecorder()
	data := TemplateData{Title: "Connexion", CSRFToken: "tok", Data: struct {
		Email   string
		Errors  map[string]string
		General string
	}{}}
	if err := engine.Render(res, "login.html", data); err != nil {
		t.Fatalf("render login: %v", err)
	}
	if !strings.Contains(res.Body.String(), "tok") {
		t.Fatalf("rendered page must carry the CSRF token")
	}
}

func TestEuro(t *testing.T) {
	cases := map[string]string{
		"12.50":       "12,50 €",
		" 8 ":         "8,00 €",
		"not-a-price": "not-a-price",
		"":            "",
	}
	for input, want := range cases {
		if got := Euro(input); got != want {
			t.Errorf("Euro(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildNavMarksActiveEntry(t *testing.T) {
	nav := BuildNav("/admin/products", shared.UIPrefs{ExpandedSections: map[string]bool{}})

	var products *NavSection
	for i := range nav {
		if nav[i].Slug == "products" {
			products = &nav[i]
		}
	}
	if products == nil {
		t.Fatalf("products section missing")
	}
	if !products.Expanded {
		t.Fatalf("section holding the active entry must be force-expanded")
	}
	found := false
	for _, item := range products.Items {
		if item.Path == "/admin/products" && item.Active {
			found = true
		}
	}
	if !found {
		t.Fatalf("active item not marked")
	}
}

func TestBuildNavNoPrefixMatching(t *testing.T) {
	nav := BuildNav("/admin/products/stats", shared.UIPrefs{ExpandedSections: map[string]bool{}})
	for _, section := range nav {
		for _, item := range section.Items {
			if item.Path == "/admin/products" && item.Active {
				t.Fatalf("activation must be an exact path match")
			}
		}
	}
}

func TestBuildNavRespectsStoredExpansion(t *testing.T) {
	nav := BuildNav("/admin", shared.UIPrefs{ExpandedSections: map[string]bool{"orders": true}})
	for _, section := range nav {
		switch section.Slug {
		case "orders":
			if !section.Expanded {
				t.Fatalf("stored expansion must apply")
			}
		case "users":
			if section.Expanded {
				t.Fatalf("untouched sections stay collapsed")
			}
		}
	}
}
