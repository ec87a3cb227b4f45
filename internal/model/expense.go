package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant of an Expense.
type Kind string

const (
	KindPooled        Kind = "pooled"
	KindEvent         Kind = "event"
	KindAccommodation Kind = "accommodation"
)

// Header carries the fields shared by every kind of expense.
type Header struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Head returns the shared header.
func (h *Header) Head() *Header { return h }

// Expense is a line item. The set of implementations is closed: *Pooled,
// *Event and *Accommodation.
type Expense interface {
	Kind() Kind
	Head() *Header
	isExpense()
}

// PooledItem is one sub-item of a pooled purchase. Tag selects which users
// share it.
type PooledItem struct {
	Name  string
	Price decimal.Decimal
	Tag   string
}

// Pooled is a collective purchase whose sub-items are split by tag.
type Pooled struct {
	Header
	Items []PooledItem
}

func (*Pooled) Kind() Kind { return KindPooled }
func (*Pooled) isExpense() {}

// EventExtra is an add-on to an event with its own participant set.
type EventExtra struct {
	Label        string
	Price        decimal.Decimal
	Participants []string
}

// Event is a flat-price cost shared by an explicit participant list.
type Event struct {
	Header
	Price        decimal.Decimal
	Participants []string
	Extras       []EventExtra
}

func (*Event) Kind() Kind { return KindEvent }
func (*Event) isExpense() {}

// Stay is one guest of an accommodation and the nights they stayed.
type Stay struct {
	User   string
	Nights int
}

// Extra is an accommodation add-on, shared by every guest.
type Extra struct {
	Label string
	Price decimal.Decimal
}

// Accommodation is lodging billed per person per night.
type Accommodation struct {
	Header
	PricePerNight decimal.Decimal
	Participants  []Stay
	Extras        []Extra
}

func (*Accommodation) Kind() Kind { return KindAccommodation }
func (*Accommodation) isExpense() {}

// Valid reports whether e is usable: non-nil with a non-empty ID and name.
func Valid(e Expense) bool {
	if e == nil {
		return false
	}
	h := e.Head()
	return h != nil && h.ID != "" && h.Name != ""
}

// Total returns the full price of an expense across all participants.
func Total(e Expense) decimal.Decimal {
	total := decimal.Zero
	switch e := e.(type) {
	case *Pooled:
		for _, item := range e.Items {
			total = total.Add(item.Price)
		}
	case *Event:
		total = total.Add(e.Price)
		for _, extra := range e.Extras {
			total = total.Add(extra.Price)
		}
	case *Accommodation:
		for _, stay := range e.Participants {
			total = total.Add(e.PricePerNight.Mul(decimal.NewFromInt(int64(stay.Nights))))
		}
		for _, extra := range e.Extras {
			total = total.Add(extra.Price)
		}
	}
	return total
}

// GrandTotal sums Total over all valid expenses.
func GrandTotal(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if Valid(e) {
			total = total.Add(Total(e))
		}
	}
	return total
}

// Clone returns a deep copy of e.
func Clone(e Expense) Expense {
	switch e := e.(type) {
	case *Pooled:
		c := *e
		c.Items = append([]PooledItem(nil), e.Items...)
		return &c
	case *Event:
		c := *e
		c.Participants = append([]string(nil), e.Participants...)
		c.Extras = make([]EventExtra, len(e.Extras))
		for i, x := range e.Extras {
			x.Participants = append([]string(nil), x.Participants...)
			c.Extras[i] = x
		}
		return &c
	case *Accommodation:
		c := *e
		c.Participants = append([]Stay(nil), e.Participants...)
		c.Extras = append([]Extra(nil), e.Extras...)
		return &c
	}
	return nil
}
