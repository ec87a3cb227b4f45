// Package calc is the cost-allocation and settlement engine.
//
// Every figure the engine produces is derived from Allocate: the aggregator
// sums its shares over the roster and the breakdown filters them to one user,
// so the two can never disagree. All functions are pure.
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
)

// LineKind says which part of an expense a Line prices.
type LineKind string

const (
	LineItem  LineKind = "item"  // pooled sub-item
	LineMain  LineKind = "main"  // event price or accommodation nights
	LineExtra LineKind = "extra" // event or accommodation extra
)

// Share is what one user owes for one Line.
type Share struct {
	User   string
	Amount decimal.Decimal
	Nights int // accommodation main lines only
}

// Line is one priced component of an expense and who owes what for it.
type Line struct {
	Label        string
	Kind         LineKind
	Tag          string
	Total        decimal.Decimal
	Participants int
	Shares       []Share
}

// Engine applies the allocation rules. General is the tag that splits a
// pooled item across the whole roster; empty means model.DefaultGeneralTag.
type Engine struct {
	General string
}

// New returns an Engine using general as the general tag.
func New(general string) *Engine {
	return &Engine{General: general}
}

func (en *Engine) general() string {
	if en == nil || en.General == "" {
		return model.DefaultGeneralTag
	}
	return en.General
}

// Allocate maps one expense onto the roster. Components that nobody can owe
// (zero price, no tag, empty eligible set, no participants) are omitted.
func (en *Engine) Allocate(e model.Expense, users []model.User) []Line {
	if !model.Valid(e) {
		return nil
	}
	switch e := e.(type) {
	case *model.Pooled:
		return en.allocatePooled(e, users)
	case *model.Event:
		return allocateEvent(e)
	case *model.Accommodation:
		return allocateAccommodation(e)
	}
	return nil
}

// Eligible returns the names of the users who share a pooled item tagged tag.
func (en *Engine) Eligible(users []model.User, tag string) []string {
	if tag == "" {
		return nil
	}
	if tag == en.general() {
		return model.UserNames(users)
	}
	var names []string
	for _, u := range users {
		if u.HasTag(tag) {
			names = append(names, u.Name)
		}
	}
	return names
}

func (en *Engine) allocatePooled(p *model.Pooled, users []model.User) []Line {
	var lines []Line
	for _, item := range p.Items {
		if item.Price.IsZero() || item.Tag == "" {
			continue
		}
		eligible := en.Eligible(users, item.Tag)
		if len(eligible) == 0 {
			continue
		}
		lines = append(lines, Line{
			Label:        labelOr(item.Name, "Item"),
			Kind:         LineItem,
			Tag:          item.Tag,
			Total:        item.Price,
			Participants: len(eligible),
			Shares:       splitEvenly(item.Price, eligible),
		})
	}
	return lines
}

func allocateEvent(ev *model.Event) []Line {
	var lines []Line
	if !ev.Price.IsZero() && len(ev.Participants) > 0 {
		lines = append(lines, Line{
			Label:        labelOr(ev.Name, "Event"),
			Kind:         LineMain,
			Total:        ev.Price,
			Participants: len(ev.Participants),
			Shares:       splitEvenly(ev.Price, ev.Participants),
		})
	}
	for _, extra := range ev.Extras {
		if extra.Price.IsZero() || len(extra.Participants) == 0 {
			continue
		}
		lines = append(lines, Line{
			Label:        labelOr(extra.Label, "Extra"),
			Kind:         LineExtra,
			Total:        extra.Price,
			Participants: len(extra.Participants),
			Shares:       splitEvenly(extra.Price, extra.Participants),
		})
	}
	return lines
}

func allocateAccommodation(a *model.Accommodation) []Line {
	if len(a.Participants) == 0 {
		return nil
	}
	var lines []Line
	if !a.PricePerNight.IsZero() {
		main := Line{
			Label:        labelOr(a.Name, "Accommodation"),
			Kind:         LineMain,
			Total:        decimal.Zero,
			Participants: len(a.Participants),
			Shares:       make([]Share, 0, len(a.Participants)),
		}
		for _, stay := range a.Participants {
			cost := a.PricePerNight.Mul(decimal.NewFromInt(int64(stay.Nights)))
			main.Total = main.Total.Add(cost)
			main.Shares = append(main.Shares, Share{User: stay.User, Amount: cost, Nights: stay.Nights})
		}
		lines = append(lines, main)
	}

	guests := make([]string, len(a.Participants))
	for i, stay := range a.Participants {
		guests[i] = stay.User
	}
	for _, extra := range a.Extras {
		if extra.Price.IsZero() {
			continue
		}
		lines = append(lines, Line{
			Label:        labelOr(extra.Label, "Extra"),
			Kind:         LineExtra,
			Total:        extra.Price,
			Participants: len(guests),
			Shares:       splitEvenly(extra.Price, guests),
		})
	}
	return lines
}

func splitEvenly(price decimal.Decimal, names []string) []Share {
	each := price.Div(decimal.NewFromInt(int64(len(names))))
	shares := make([]Share, len(names))
	for i, name := range names {
		shares[i] = Share{User: name, Amount: each}
	}
	return shares
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// NeedsAttention returns the indexes of pooled sub-items that nobody will
// pay for: items without a tag, and items whose tag no user carries.
func (en *Engine) NeedsAttention(p *model.Pooled, users []model.User) []int {
	var idx []int
	for i, item := range p.Items {
		if item.Tag == "" || len(en.Eligible(users, item.Tag)) == 0 {
			idx = append(idx, i)
		}
	}
	return idx
}
