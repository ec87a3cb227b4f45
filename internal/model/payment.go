package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records money a user has already laid out for the group.
type Payment struct {
	ID        string
	User      string
	Amount    decimal.Decimal
	Note      string
	CreatedAt time.Time
}

// PaidByUser sums payments per user.
func PaidByUser(payments []Payment) map[string]decimal.Decimal {
	paid := make(map[string]decimal.Decimal)
	for _, p := range payments {
		paid[p.User] = paid[p.User].Add(p.Amount)
	}
	return paid
}
