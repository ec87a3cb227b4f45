package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
)

// AddPayment records money a roster user has laid out for the group.
func (l *Ledger) AddPayment(ctx context.Context, user string, amount decimal.Decimal, note string) (model.Payment, error) {
	if model.FindUser(l.users, user) < 0 {
		return model.Payment{}, fmt.Errorf("%w: %s", ErrUserNotFound, user)
	}
	if !amount.IsPositive() {
		return model.Payment{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	p := model.Payment{
		ID:        l.newID(),
		User:      user,
		Amount:    amount,
		Note:      strings.TrimSpace(note),
		CreatedAt: l.now().UTC(),
	}
	if err := l.savePayments(ctx, append(slices.Clone(l.payments), p)); err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

// DeletePayment removes a recorded payment by exact id.
func (l *Ledger) DeletePayment(ctx context.Context, paymentID string) error {
	i := slices.IndexFunc(l.payments, func(p model.Payment) bool { return p.ID == paymentID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	return l.savePayments(ctx, slices.Delete(slices.Clone(l.payments), i, i+1))
}
