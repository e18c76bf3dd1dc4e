package importer

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `sku,name,description,price_cents,currency,image_url,stock
SKU-1,Ashwagandha Capsules,60 capsules,20000,INR,https://example.com/ashwa.jpg,120
SKU-2,Brahmi Oil,Cold pressed,5000,,,
,,,,,,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, "INR")

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(repo.items))
	}

	first := repo.items[0]
	if first.SKU != "SKU-1" || first.Name != "Ashwagandha Capsules" || first.PriceCents != 20000 || first.Stock != 120 {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if first.ImageURL != "https://example.com/ashwa.jpg" {
		t.Fatalf("expected image url, got %q", first.ImageURL)
	}

	second := repo.items[1]
	if second.Currency != "INR" {
		t.Fatalf("expected default currency INR, got %q", second.Currency)
	}
	if second.Stock != 0 {
		t.Fatalf("expected zero stock fallback, got %d", second.Stock)
	}
}

func TestCSVImporter_RunRejectsBadPrice(t *testing.T) {
	csvData := `sku,name,price_cents
SKU-1,Good Product,1000
SKU-2,Bad Product,free`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, "INR")

	count, err := imp.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for non-numeric price")
	}
	if count != 1 {
		t.Fatalf("expected 1 product imported before failure, got %d", count)
	}
}

func TestCSVImporter_RunMissingSKU(t *testing.T) {
	csvData := `sku,name,price_cents
,Nameless,1000`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, "INR")
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for row missing sku")
	}
}
