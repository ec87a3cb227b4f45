package calc

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tolerance is the balance below which a user counts as settled.
var Tolerance = decimal.New(1, -2)

// Transfer is one payment that moves a debtor towards zero.
type Transfer struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// Balances returns paid minus owed for every user named in either mapping.
// Positive means the group owes the user money.
func Balances(costs, payments map[string]decimal.Decimal) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(costs))
	for name, owed := range costs {
		balances[name] = payments[name].Sub(owed)
	}
	for name, paid := range payments {
		if _, ok := balances[name]; !ok {
			balances[name] = paid
		}
	}
	return balances
}

// Settlements is Settle(Balances(costs, payments)).
func Settlements(costs, payments map[string]decimal.Decimal) []Transfer {
	return Settle(Balances(costs, payments))
}

type party struct {
	name      string
	remaining decimal.Decimal
}

// Settle turns net balances into transfers using greedy matching of the
// largest creditor with the largest debtor. It emits at most
// creditors+debtors-1 transfers. A transfer is emitted when its unrounded
// amount exceeds Tolerance and is then rounded to cents, so an amount just
// above Tolerance is emitted as 0.01. The count is not guaranteed to be the
// true minimum.
func Settle(balances map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []party
	for name, b := range balances {
		switch {
		case b.GreaterThan(Tolerance):
			creditors = append(creditors, party{name: name, remaining: b})
		case b.LessThan(Tolerance.Neg()):
			debtors = append(debtors, party{name: name, remaining: b.Neg()})
		}
	}
	sortParties(creditors)
	sortParties(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		c, d := &creditors[i], &debtors[j]

		amount := decimal.Min(c.remaining, d.remaining)
		if amount.GreaterThan(Tolerance) {
			transfers = append(transfers, Transfer{From: d.name, To: c.name, Amount: amount.Round(2)})
		}

		c.remaining = c.remaining.Sub(amount)
		d.remaining = d.remaining.Sub(amount)

		if c.remaining.LessThanOrEqual(Tolerance) {
			i++
		}
		if d.remaining.LessThanOrEqual(Tolerance) {
			j++
		}
	}
	return transfers
}

// sortParties orders by amount descending; ties break on name so that the
// output does not depend on map iteration order.
func sortParties(ps []party) {
	sort.Slice(ps, func(a, b int) bool {
		if cmp := ps[a].remaining.Cmp(ps[b].remaining); cmp != 0 {
			return cmp > 0
		}
		return ps[a].name < ps[b].name
	})
}
