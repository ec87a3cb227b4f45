package calc

import (
	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
)

// UserCosts returns what every roster user owes across all expenses. The
// result has exactly one entry per roster user; shares assigned to names
// that are not on the roster are dropped.
func (en *Engine) UserCosts(users []model.User, expenses []model.Expense) map[string]decimal.Decimal {
	costs := make(map[string]decimal.Decimal, len(users))
	for _, u := range users {
		costs[u.Name] = decimal.Zero
	}
	for _, e := range expenses {
		for _, line := range en.Allocate(e, users) {
			for _, s := range line.Shares {
				if cur, ok := costs[s.User]; ok {
					costs[s.User] = cur.Add(s.Amount)
				}
			}
		}
	}
	return costs
}

// Sum adds up all values of a cost or balance mapping.
func Sum(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
