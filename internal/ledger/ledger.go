// Package ledger is the mutation boundary for the roster, the expense
// collection and recorded payments. Every mutation validates its input,
// re-saves the whole touched collection and only then updates memory, so a
// failed save leaves the ledger unchanged.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/calc"
	"github.com/splitter-dev/splitter/internal/id"
	"github.com/splitter-dev/splitter/internal/model"
	"github.com/splitter-dev/splitter/internal/store"
	"github.com/splitter-dev/splitter/internal/tags"
)

// Ledger owns the in-memory collections. It is not safe for concurrent use.
type Ledger struct {
	store  store.Store
	codec  *store.Codec
	tags   *tags.Service
	engine *calc.Engine

	users    []model.User
	expenses []model.Expense
	payments []model.Payment

	now   func() time.Time
	newID func() string
}

// Open loads every collection from st.
func Open(ctx context.Context, st store.Store, reg *tags.Service) (*Ledger, error) {
	if reg == nil {
		reg = tags.Default()
	}
	l := &Ledger{
		store:  st,
		codec:  store.NewCodec(reg),
		tags:   reg,
		engine: calc.New(reg.General()),
		now:    time.Now,
		newID:  id.New,
	}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload replaces the in-memory collections with what the store holds.
func (l *Ledger) Reload(ctx context.Context) error {
	raw := make(map[string][]byte, len(store.Keys))
	for _, key := range store.Keys {
		data, err := l.store.Load(ctx, key)
		if err != nil {
			return fmt.Errorf("loading %s: %w", key, err)
		}
		raw[key] = data
	}
	users, err := l.codec.DecodeUsers(raw[store.KeyUsers])
	if err != nil {
		return err
	}
	expenses, err := l.codec.DecodeExpenses(raw[store.KeyExpenses])
	if err != nil {
		return err
	}
	payments, err := l.codec.DecodePayments(raw[store.KeyPayments])
	if err != nil {
		return err
	}
	l.users, l.expenses, l.payments = users, expenses, payments
	slog.Debug("ledger loaded", "users", len(users), "expenses", len(expenses), "payments", len(payments))
	return nil
}

// Tags returns the tag registry.
func (l *Ledger) Tags() *tags.Service { return l.tags }

// Engine returns the allocation engine configured with the registry's
// general tag.
func (l *Ledger) Engine() *calc.Engine { return l.engine }

// Users returns a copy of the roster.
func (l *Ledger) Users() []model.User {
	return slices.Clone(l.users)
}

// Expenses returns a copy of the expense collection.
func (l *Ledger) Expenses() []model.Expense {
	out := make([]model.Expense, len(l.expenses))
	for i, e := range l.expenses {
		out[i] = model.Clone(e)
	}
	return out
}

// Payments returns a copy of the recorded payments.
func (l *Ledger) Payments() []model.Payment {
	return slices.Clone(l.payments)
}

// PaidByUser sums recorded payments per user.
func (l *Ledger) PaidByUser() map[string]decimal.Decimal {
	return model.PaidByUser(l.payments)
}

// Costs returns what every roster user owes.
func (l *Ledger) Costs() map[string]decimal.Decimal {
	return l.engine.UserCosts(l.users, l.expenses)
}

// GrandTotal is the full price of every valid expense.
func (l *Ledger) GrandTotal() decimal.Decimal {
	return model.GrandTotal(l.expenses)
}

// Balances returns paid minus owed per user.
func (l *Ledger) Balances() map[string]decimal.Decimal {
	return calc.Balances(l.Costs(), l.PaidByUser())
}

// Settlements returns the transfers that settle all balances.
func (l *Ledger) Settlements() []calc.Transfer {
	return calc.Settle(l.Balances())
}

// Breakdown explains user's share of the expense selected by ref.
func (l *Ledger) Breakdown(ref, user string) (calc.Breakdown, error) {
	if model.FindUser(l.users, user) < 0 {
		return calc.Breakdown{}, fmt.Errorf("%w: %s", ErrUserNotFound, user)
	}
	i, err := l.expenseIndex(ref)
	if err != nil {
		return calc.Breakdown{}, err
	}
	return l.engine.DetailedBreakdown(l.expenses[i], l.users, user), nil
}

// Summary returns user's per-category overview.
func (l *Ledger) Summary(user string) (calc.Summary, error) {
	if model.FindUser(l.users, user) < 0 {
		return calc.Summary{}, fmt.Errorf("%w: %s", ErrUserNotFound, user)
	}
	return l.engine.Summarize(l.users, l.expenses, user), nil
}

// Export renders the full state as a snapshot document.
func (l *Ledger) Export() ([]byte, error) {
	return l.codec.EncodeSnapshot(store.Snapshot{
		Users:     l.users,
		Expenses:  l.expenses,
		Payments:  l.payments,
		Timestamp: l.now(),
	})
}

// Import replaces the collections present in a snapshot document. The whole
// document is decoded before anything is written; collections it does not
// carry are kept.
func (l *Ledger) Import(ctx context.Context, data []byte) error {
	snap, err := l.codec.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	users, expenses, payments := l.users, l.expenses, l.payments
	if snap.Present[store.KeyUsers] {
		users = snap.Users
	}
	if snap.Present[store.KeyExpenses] {
		expenses = snap.Expenses
	}
	if snap.Present[store.KeyPayments] {
		payments = snap.Payments
	}

	encoded := make(map[string][]byte, len(store.Keys))
	if encoded[store.KeyUsers], err = l.codec.EncodeUsers(users); err != nil {
		return err
	}
	if encoded[store.KeyExpenses], err = l.codec.EncodeExpenses(expenses); err != nil {
		return err
	}
	if encoded[store.KeyPayments], err = l.codec.EncodePayments(payments); err != nil {
		return err
	}
	for _, key := range store.Keys {
		if !snap.Present[key] {
			continue
		}
		if err := l.store.Save(ctx, key, encoded[key]); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	l.users, l.expenses, l.payments = users, expenses, payments
	slog.Info("snapshot imported", "users", len(users), "expenses", len(expenses), "payments", len(payments))
	return nil
}

func (l *Ledger) save(ctx context.Context, key string, data []byte, records int) error {
	if err := l.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	slog.Debug("collection saved", "key", key, "records", records)
	return nil
}

func (l *Ledger) saveUsers(ctx context.Context, users []model.User) error {
	data, err := l.codec.EncodeUsers(users)
	if err != nil {
		return err
	}
	if err := l.save(ctx, store.KeyUsers, data, len(users)); err != nil {
		return err
	}
	l.users = users
	return nil
}

func (l *Ledger) saveExpenses(ctx context.Context, expenses []model.Expense) error {
	data, err := l.codec.EncodeExpenses(expenses)
	if err != nil {
		return err
	}
	if err := l.save(ctx, store.KeyExpenses, data, len(expenses)); err != nil {
		return err
	}
	l.expenses = expenses
	return nil
}

func (l *Ledger) savePayments(ctx context.Context, payments []model.Payment) error {
	data, err := l.codec.EncodePayments(payments)
	if err != nil {
		return err
	}
	if err := l.save(ctx, store.KeyPayments, data, len(payments)); err != nil {
		return err
	}
	l.payments = payments
	return nil
}
