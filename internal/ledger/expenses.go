package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/splitter-dev/splitter/internal/id"
	"github.com/splitter-dev/splitter/internal/model"
)

// Expense returns the expense whose id equals ref or starts with it.
func (l *Ledger) Expense(ref string) (model.Expense, error) {
	i, err := l.expenseIndex(ref)
	if err != nil {
		return nil, err
	}
	return model.Clone(l.expenses[i]), nil
}

func (l *Ledger) expenseIndex(ref string) (int, error) {
	if i := slices.IndexFunc(l.expenses, func(e model.Expense) bool { return e.Head().ID == ref }); i >= 0 {
		return i, nil
	}
	found := -1
	for i, e := range l.expenses {
		if id.Match(e.Head().ID, ref) {
			if found >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %s", ErrExpenseNotFound, ref)
	}
	return found, nil
}

// Warnings returns the soft problems of e against the current roster.
func (l *Ledger) Warnings(e model.Expense) []ValidationError {
	return Warnings(e, l.users, l.engine)
}

// SaveExpense creates e when its ID is empty and replaces the stored expense
// of the same kind with that ID otherwise. New expenses get a fresh ID and creation time;
// replacements keep the original creation time. The saved expense is
// returned together with any warnings.
func (l *Ledger) SaveExpense(ctx context.Context, e model.Expense) (model.Expense, []ValidationError, error) {
	e = model.Clone(e)
	if e == nil {
		return nil, nil, fmt.Errorf("%w: missing", ErrInvalidExpense)
	}
	l.normalize(e)
	if verrs := ValidateExpense(e, l.tags); len(verrs) > 0 {
		return nil, verrs, fmt.Errorf("%w: %s", ErrInvalidExpense, joinErrors(verrs))
	}

	now := l.now().UTC()
	h := e.Head()
	expenses := slices.Clone(l.expenses)
	if h.ID == "" {
		h.ID = l.newID()
		h.CreatedAt = now
		h.UpdatedAt = now
		expenses = append(expenses, e)
	} else {
		i := slices.IndexFunc(expenses, func(x model.Expense) bool { return x.Head().ID == h.ID })
		if i < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrExpenseNotFound, h.ID)
		}
		if old := expenses[i].Kind(); old != e.Kind() {
			return nil, nil, fmt.Errorf("%w: %s is %s, not %s", ErrInvalidExpense, h.ID, old, e.Kind())
		}
		h.CreatedAt = expenses[i].Head().CreatedAt
		h.UpdatedAt = now
		expenses[i] = e
	}

	if err := l.saveExpenses(ctx, expenses); err != nil {
		return nil, nil, err
	}
	return model.Clone(e), l.Warnings(e), nil
}

// DeleteExpense removes the expense selected by ref.
func (l *Ledger) DeleteExpense(ctx context.Context, ref string) (model.Expense, error) {
	i, err := l.expenseIndex(ref)
	if err != nil {
		return nil, err
	}
	removed := l.expenses[i]
	if err := l.saveExpenses(ctx, slices.Delete(slices.Clone(l.expenses), i, i+1)); err != nil {
		return nil, err
	}
	return removed, nil
}

// normalize trims names, maps legacy tag names and drops repeated
// participants, keeping the first occurrence.
func (l *Ledger) normalize(e model.Expense) {
	h := e.Head()
	h.Name = strings.TrimSpace(h.Name)
	switch e := e.(type) {
	case *model.Pooled:
		for i := range e.Items {
			e.Items[i].Name = strings.TrimSpace(e.Items[i].Name)
			e.Items[i].Tag = l.tags.Canonical(strings.TrimSpace(e.Items[i].Tag))
		}
	case *model.Event:
		e.Participants = uniqueNames(e.Participants)
		for i := range e.Extras {
			e.Extras[i].Participants = uniqueNames(e.Extras[i].Participants)
		}
	case *model.Accommodation:
		seen := make(map[string]bool, len(e.Participants))
		stays := e.Participants[:0]
		for _, s := range e.Participants {
			s.User = strings.TrimSpace(s.User)
			if seen[s.User] {
				continue
			}
			seen[s.User] = true
			stays = append(stays, s)
		}
		e.Participants = stays
	}
}

func uniqueNames(in []string) []string {
	var out []string
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
