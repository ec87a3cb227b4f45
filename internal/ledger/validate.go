package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/splitter-dev/splitter/internal/calc"
	"github.com/splitter-dev/splitter/internal/model"
	"github.com/splitter-dev/splitter/internal/tags"
)

// Sentinel errors returned by ledger mutations.
var (
	ErrEmptyName       = errors.New("name must not be empty")
	ErrDuplicateUser   = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnknownTag      = errors.New("unknown tag")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrAmbiguousID     = errors.New("ambiguous id prefix")
	ErrInvalidExpense  = errors.New("invalid expense")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
)

// ValidationError describes one problem with an expense. Index is the
// position of the offending sub-item, participant or extra, or -1 when the
// problem concerns the expense as a whole.
type ValidationError struct {
	Field       string
	Index       int
	Description string
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Description)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Description)
}

func joinErrors(verrs []ValidationError) string {
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateExpense returns the problems that prevent e from being saved.
func ValidateExpense(e model.Expense, reg *tags.Service) []ValidationError {
	if e == nil {
		return []ValidationError{{Field: "expense", Index: -1, Description: "missing"}}
	}
	var errs []ValidationError
	if strings.TrimSpace(e.Head().Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Index: -1, Description: "must not be empty"})
	}
	negative := func(field string, i int) {
		errs = append(errs, ValidationError{Field: field, Index: i, Description: "price must not be negative"})
	}

	switch e := e.(type) {
	case *model.Pooled:
		for i, item := range e.Items {
			if item.Price.IsNegative() {
				negative("items", i)
			}
			if item.Tag != "" && !reg.UsableOnItems(item.Tag) {
				errs = append(errs, ValidationError{Field: "items", Index: i, Description: fmt.Sprintf("tag %q cannot be used on items", item.Tag)})
			}
		}
	case *model.Event:
		if e.Price.IsNegative() {
			negative("price", -1)
		}
		for i, x := range e.Extras {
			if x.Price.IsNegative() {
				negative("extras", i)
			}
		}
	case *model.Accommodation:
		if e.PricePerNight.IsNegative() {
			negative("price_per_night", -1)
		}
		for i, s := range e.Participants {
			if strings.TrimSpace(s.User) == "" {
				errs = append(errs, ValidationError{Field: "participants", Index: i, Description: "missing user"})
			}
			if s.Nights < 1 {
				errs = append(errs, ValidationError{Field: "participants", Index: i, Description: "nights must be at least 1"})
			}
		}
		for i, x := range e.Extras {
			if x.Price.IsNegative() {
				negative("extras", i)
			}
		}
	}
	return errs
}

// Warnings returns the soft problems of e: components nobody will pay for
// and participants missing from the roster. They never block a save.
func Warnings(e model.Expense, users []model.User, engine *calc.Engine) []ValidationError {
	var warns []ValidationError
	onRoster := func(field string, i int, name string) {
		if model.FindUser(users, name) < 0 {
			warns = append(warns, ValidationError{Field: field, Index: i, Description: fmt.Sprintf("%s is not on the roster", name)})
		}
	}
	switch e := e.(type) {
	case *model.Pooled:
		for _, i := range engine.NeedsAttention(e, users) {
			desc := "no user carries this tag"
			if e.Items[i].Tag == "" {
				desc = "no tag"
			}
			warns = append(warns, ValidationError{Field: "items", Index: i, Description: desc})
		}
	case *model.Event:
		if len(e.Participants) == 0 && !e.Price.IsZero() {
			warns = append(warns, ValidationError{Field: "participants", Index: -1, Description: "no participants"})
		}
		for i, name := range e.Participants {
			onRoster("participants", i, name)
		}
		for i, x := range e.Extras {
			if len(x.Participants) == 0 && !x.Price.IsZero() {
				warns = append(warns, ValidationError{Field: "extras", Index: i, Description: "no participants"})
			}
		}
	case *model.Accommodation:
		if len(e.Participants) == 0 {
			warns = append(warns, ValidationError{Field: "participants", Index: -1, Description: "no guests"})
		}
		for i, s := range e.Participants {
			onRoster("participants", i, s.User)
		}
	}
	return warns
}
