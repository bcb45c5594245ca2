package charts

import (
	"strings"
	"testing"

	"github.com/chezflora/flora-admin/internal/flora"
)

func TestLineRendersSeries(t *testing.T) {
	out := string(Line("Inscriptions", []flora.DayPoint{
		{Date: "2026-08-01", Count: 3},
		{Date: "2026-08-02", Count: 7},
	}))
	if out == "" {
		t.Fatalf("expected chart markup")
	}
	if !strings.Contains(out, "Inscriptions") {
		t.Fatalf("title missing from chart markup")
	}
	if !strings.Contains(out, "2026-08-01") {
		t.Fatalf("axis labels missing from chart markup")
	}
}

func TestRevenueLineParsesAmounts(t *testing.T) {
	out := string(RevenueLine("Revenus", []flora.DayPoint{
		{Date: "2026-08-01", Total: "120.50"},
	}))
	if out == "" {
		t.Fatalf("expected chart markup")
	}
	if !strings.Contains(out, "120.5") {
		t.Fatalf("parsed amount missing from chart markup")
	}
}

func TestBarSortsLabels(t *testing.T) {
	out := string(Bar("Commandes par statut", map[string]int{
		"livree":     4,
		"annulee":    1,
		"en_attente": 2,
	}))
	if out == "" {
		t.Fatalf("expected chart markup")
	}
	// Sorted labels keep the axis stable between renders.
	first := strings.Index(out, "annulee")
	second := strings.Index(out, "en_attente")
	third := strings.Index(out, "livree")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("labels missing from chart markup")
	}
	if !(first < second && second < third) {
		t.Fatalf("labels must render in sorted order")
	}
}

func TestPieRendersSlices(t *testing.T) {
	out := string(Pie("Paiements par type", map[string]int{"carte": 10, "paypal": 5}))
	if out == "" {
		t.Fatalf("expected chart markup")
	}
	if !strings.Contains(out, "carte") || !strings.Contains(out, "paypal") {
		t.Fatalf("slice labels missing")
	}
}

func TestEmptySeriesStillRenders(t *testing.T) {
	if out := string(Bar("Vide", nil)); out == "" {
		t.Fatalf("empty data must still produce markup")
	}
}
