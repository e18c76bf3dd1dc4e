package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
//
// Expected headers: sku, name, description, price_cents, currency,
// image_url, stock. Missing optional columns are tolerated.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	currency    string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, defaultCurrency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		currency:    defaultCurrency,
	}
}

// Run parses CSV rows and upserts one product per row. It returns the
// number of products imported; on error the count covers rows already
// written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		p, err := i.parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if p == nil {
			continue
		}

		if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.SKU, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) parseRow(record []string, index map[string]int) (*domain.Product, error) {
	sku := pick(record, index, "sku")
	name := pick(record, index, "name")
	if sku == "" && name == "" {
		// Blank row.
		return nil, nil
	}
	if sku == "" || name == "" {
		return nil, fmt.Errorf("missing sku or name (sku=%q name=%q)", sku, name)
	}

	centStr := pick(record, index, "price_cents")
	cents, err := strconv.ParseInt(centStr, 10, 64)
	if err != nil || cents <= 0 {
		return nil, fmt.Errorf("invalid price_cents %q for sku %q", centStr, sku)
	}

	currency := pick(record, index, "currency")
	if currency == "" {
		currency = i.currency
	}

	stock := 0
	if stockStr := pick(record, index, "stock"); stockStr != "" {
		stock, err = strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("invalid stock %q for sku %q", stockStr, sku)
		}
	}

	return &domain.Product{
		SKU:         sku,
		Name:        name,
		Description: pick(record, index, "description"),
		PriceCents:  cents,
		Currency:    currency,
		ImageURL:    pick(record, index, "image_url"),
		Stock:       stock,
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
