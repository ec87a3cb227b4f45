package calc

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balances(kv map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv))
	for k, v := range kv {
		out[k] = dec(v)
	}
	return out
}

func TestSettle_Example(t *testing.T) {
	got := Settle(balances(map[string]string{"A": "40", "B": "-25", "C": "-15"}))
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].From)
	assert.Equal(t, "A", got[0].To)
	assertDec(t, "25", got[0].Amount)
	assert.Equal(t, "C", got[1].From)
	assert.Equal(t, "A", got[1].To)
	assertDec(t, "15", got[1].Amount)
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
		want     []string
	}{
		{
			name:     "all settled",
			balances: map[string]string{"A": "0", "B": "0.004", "C": "-0.01"},
			want:     nil,
		},
		{
			name:     "empty",
			balances: map[string]string{},
			want:     nil,
		},
		{
			name:     "one debtor many creditors",
			balances: map[string]string{"A": "10", "B": "20", "C": "-30"},
			want:     []string{"C->B 20.00", "C->A 10.00"},
		},
		{
			name:     "ties break on name",
			balances: map[string]string{"B": "5", "A": "5", "D": "-5", "C": "-5"},
			want:     []string{"C->A 5.00", "D->B 5.00"},
		},
		{
			name:     "rounded on output",
			balances: map[string]string{"A": "33.333333", "B": "-33.333333"},
			want:     []string{"B->A 33.33"},
		},
		{
			name:     "just above tolerance rounds to one cent",
			balances: map[string]string{"A": "0.012", "B": "-0.012"},
			want:     []string{"B->A 0.01"},
		},
		{
			name:     "dust below tolerance is dropped",
			balances: map[string]string{"A": "10.005", "B": "-10"},
			want:     []string{"B->A 10.00"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, tr := range Settle(balances(tt.balances)) {
				got = append(got, fmt.Sprintf("%s->%s %s", tr.From, tr.To, tr.Amount.StringFixed(2)))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBalances(t *testing.T) {
	costs := balances(map[string]string{"A": "30", "B": "30"})
	paid := balances(map[string]string{"A": "60", "Z": "5"})

	got := Balances(costs, paid)
	require.Len(t, got, 3)
	assertDec(t, "30", got["A"])
	assertDec(t, "-30", got["B"])
	assertDec(t, "5", got["Z"])

	transfers := Settlements(costs, balances(map[string]string{"A": "60"}))
	require.Len(t, transfers, 1)
	assert.Equal(t, Transfer{From: "B", To: "A", Amount: transfers[0].Amount}, transfers[0])
	assertDec(t, "30", transfers[0].Amount)
}

func TestSettle_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		n := 2 + r.Intn(9)
		bal := make(map[string]decimal.Decimal, n)
		sum := decimal.Zero
		for i := 0; i < n-1; i++ {
			// Whole nickels keep every partial match exact.
			v := decimal.New(int64(r.Intn(8001)-4000)*5, -2)
			bal[fmt.Sprintf("p%d", i)] = v
			sum = sum.Add(v)
		}
		bal[fmt.Sprintf("p%d", n-1)] = sum.Neg()

		creditors, debtors := 0, 0
		for _, v := range bal {
			if v.GreaterThan(Tolerance) {
				creditors++
			} else if v.LessThan(Tolerance.Neg()) {
				debtors++
			}
		}

		transfers := Settle(bal)
		if creditors > 0 && debtors > 0 {
			assert.LessOrEqual(t, len(transfers), creditors+debtors-1, "round %d", round)
		}

		remaining := make(map[string]decimal.Decimal, n)
		for k, v := range bal {
			remaining[k] = v
		}
		for _, tr := range transfers {
			assert.NotEqual(t, tr.From, tr.To)
			assert.True(t, tr.Amount.GreaterThan(Tolerance), "round %d amount %s", round, tr.Amount)
			remaining[tr.From] = remaining[tr.From].Add(tr.Amount)
			remaining[tr.To] = remaining[tr.To].Sub(tr.Amount)
		}
		for name, v := range remaining {
			assert.True(t, v.Abs().LessThanOrEqual(Tolerance), "round %d %s left with %s", round, name, v)
		}
	}
}
