package calc

import (
	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
)

// BreakdownItem is one line of an expense as seen by a single user.
type BreakdownItem struct {
	Name         string
	Kind         LineKind
	Tag          string
	UserShare    decimal.Decimal
	Total        decimal.Decimal
	Participants int
	Nights       int
}

// Breakdown explains a user's share of one expense.
type Breakdown struct {
	ID    string
	Name  string
	Type  model.Kind
	Items []BreakdownItem
	Total decimal.Decimal
}

// DetailedBreakdown replays Allocate for e and keeps the lines user takes
// part in. Total equals the contribution UserCosts attributes to user for e.
func (en *Engine) DetailedBreakdown(e model.Expense, users []model.User, user string) Breakdown {
	var b Breakdown
	if e == nil {
		return b
	}
	b.Type = e.Kind()
	b.ID = e.Head().ID
	b.Name = e.Head().Name
	b.Items, b.Total = en.userLines(e, users, user)
	return b
}

func (en *Engine) userLines(e model.Expense, users []model.User, user string) ([]BreakdownItem, decimal.Decimal) {
	var items []BreakdownItem
	total := decimal.Zero
	for _, line := range en.Allocate(e, users) {
		for _, s := range line.Shares {
			if s.User != user {
				continue
			}
			items = append(items, BreakdownItem{
				Name:         line.Label,
				Kind:         line.Kind,
				Tag:          line.Tag,
				UserShare:    s.Amount,
				Total:        line.Total,
				Participants: line.Participants,
				Nights:       s.Nights,
			})
			total = total.Add(s.Amount)
		}
	}
	return items, total
}

// ExpenseDetail is the per-expense row of a Summary.
type ExpenseDetail struct {
	ID          string
	Name        string
	Type        model.Kind
	UserAmount  decimal.Decimal
	TotalAmount decimal.Decimal
	Count       int
	Items       []BreakdownItem
}

// Category groups the expenses of one kind in a Summary.
type Category struct {
	Count  int
	Amount decimal.Decimal
	Items  []ExpenseDetail
}

// Summary is a user's overview across the whole collection.
type Summary struct {
	User           string
	Total          decimal.Decimal
	Pooled         Category
	Events         Category
	Accommodations Category
}

// Summarize builds a user's per-category overview. Only expenses the user
// owes something for are listed. Users who are not on the roster get an
// empty summary, matching UserCosts.
func (en *Engine) Summarize(users []model.User, expenses []model.Expense, user string) Summary {
	s := Summary{User: user}
	if model.FindUser(users, user) < 0 {
		return s
	}
	for _, e := range expenses {
		if !model.Valid(e) {
			continue
		}
		items, amount := en.userLines(e, users, user)
		if !amount.IsPositive() {
			continue
		}
		detail := ExpenseDetail{
			ID:          e.Head().ID,
			Name:        e.Head().Name,
			Type:        e.Kind(),
			UserAmount:  amount,
			TotalAmount: decimal.Zero,
			Count:       len(items),
			Items:       items,
		}
		for _, it := range items {
			detail.TotalAmount = detail.TotalAmount.Add(it.Total)
		}

		var cat *Category
		switch e.(type) {
		case *model.Pooled:
			cat = &s.Pooled
		case *model.Event:
			cat = &s.Events
		case *model.Accommodation:
			cat = &s.Accommodations
		}
		cat.Count++
		cat.Amount = cat.Amount.Add(amount)
		cat.Items = append(cat.Items, detail)
	}
	s.Total = en.UserCosts(users, expenses)[user]
	return s
}
