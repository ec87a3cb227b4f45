package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
)

// ReceiptParser reads a headed CSV with name, price and tag columns in any
// order. The tag column is optional. With European set, fields are separated
// by semicolons and prices use a decimal comma ("1.234,50").
type ReceiptParser struct {
	European bool
}

// Format returns the parser name.
func (p *ReceiptParser) Format() string {
	if p.European {
		return "receipt-eu"
	}
	return "receipt"
}

var headerAliases = map[string]string{
	"name":   "name",
	"item":   "name",
	"label":  "name",
	"price":  "price",
	"amount": "price",
	"tag":    "tag",
}

// Parse reads the receipt and returns one sub-item per data row.
func (p *ReceiptParser) Parse(r io.Reader) ([]model.PooledItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if p.European {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", p.Format(), err)
	}
	cols, err := columns(header)
	if err != nil {
		return nil, err
	}

	var items []model.PooledItem
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s CSV: %w", p.Format(), err)
		}
		item, err := p.parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func columns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]
		if !ok {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	for _, required := range []string{"name", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column in header %v", required, header)
		}
	}
	return cols, nil
}

func field(rec []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (p *ReceiptParser) parseRow(rec []string, cols map[string]int) (model.PooledItem, error) {
	raw := field(rec, cols, "price")
	price, err := p.parsePrice(raw)
	if err != nil {
		return model.PooledItem{}, fmt.Errorf("parsing price %q: %w", raw, err)
	}
	if price.IsNegative() {
		return model.PooledItem{}, fmt.Errorf("negative price %q", raw)
	}
	return model.PooledItem{
		Name:  field(rec, cols, "name"),
		Price: price,
		Tag:   field(rec, cols, "tag"),
	}, nil
}

func (p *ReceiptParser) parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimLeft(s, "$€£ "))
	if p.European {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
