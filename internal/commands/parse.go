package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
)

// parseMoney accepts plain decimals with a dot or a comma separator.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// cutLast splits s into n fields on ':' counting from the right, so that
// labels may contain colons.
func cutLast(s string, n int) ([]string, bool) {
	parts := make([]string, n)
	for i := n - 1; i > 0; i-- {
		j := strings.LastIndex(s, ":")
		if j < 0 {
			return nil, false
		}
		parts[i] = strings.TrimSpace(s[j+1:])
		s = s[:j]
	}
	parts[0] = strings.TrimSpace(s)
	return parts, true
}

func splitNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// parseItem parses "name:price:tag".
func parseItem(s string) (model.PooledItem, error) {
	parts, ok := cutLast(s, 3)
	if !ok {
		return model.PooledItem{}, fmt.Errorf("item %q: want name:price:tag", s)
	}
	price, err := parseMoney(parts[1])
	if err != nil {
		return model.PooledItem{}, fmt.Errorf("item %q: %w", s, err)
	}
	return model.PooledItem{Name: parts[0], Price: price, Tag: parts[2]}, nil
}

// parseEventExtra parses "label:price:A,B".
func parseEventExtra(s string) (model.EventExtra, error) {
	parts, ok := cutLast(s, 3)
	if !ok {
		return model.EventExtra{}, fmt.Errorf("extra %q: want label:price:user,user", s)
	}
	price, err := parseMoney(parts[1])
	if err != nil {
		return model.EventExtra{}, fmt.Errorf("extra %q: %w", s, err)
	}
	return model.EventExtra{Label: parts[0], Price: price, Participants: splitNames(parts[2])}, nil
}

// parseExtra parses "label:price".
func parseExtra(s string) (model.Extra, error) {
	parts, ok := cutLast(s, 2)
	if !ok {
		return model.Extra{}, fmt.Errorf("extra %q: want label:price", s)
	}
	price, err := parseMoney(parts[1])
	if err != nil {
		return model.Extra{}, fmt.Errorf("extra %q: %w", s, err)
	}
	return model.Extra{Label: parts[0], Price: price}, nil
}

// parseStay parses "user:nights".
func parseStay(s string) (model.Stay, error) {
	parts, ok := cutLast(s, 2)
	if !ok {
		return model.Stay{}, fmt.Errorf("stay %q: want user:nights", s)
	}
	nights, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.Stay{}, fmt.Errorf("stay %q: invalid nights", s)
	}
	return model.Stay{User: parts[0], Nights: nights}, nil
}
