package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/calc"
	"github.com/splitter-dev/splitter/internal/model"
)

// Money is rendered with two decimals as a string so clients never see
// binary floating point.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyMap(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = money(v)
	}
	return out
}

type userResponse struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type tagResponse struct {
	Name     string `json:"name"`
	ForUsers bool   `json:"for_users"`
	ForItems bool   `json:"for_items"`
	General  bool   `json:"general"`
}

type itemResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Tag   string `json:"tag,omitempty"`
}

type extraResponse struct {
	Label        string   `json:"label"`
	Price        string   `json:"price"`
	Participants []string `json:"participants,omitempty"`
}

type stayResponse struct {
	User   string `json:"user"`
	Nights int    `json:"nights"`
}

type expenseResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          model.Kind      `json:"type"`
	Total         string          `json:"total"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
	Items         []itemResponse  `json:"items,omitempty"`
	Price         string          `json:"price,omitempty"`
	PricePerNight string          `json:"price_per_night,omitempty"`
	Participants  []string        `json:"participants,omitempty"`
	Stays         []stayResponse  `json:"stays,omitempty"`
	Extras        []extraResponse `json:"extras,omitempty"`
}

func stamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toExpenseResponse(e model.Expense) expenseResponse {
	h := e.Head()
	out := expenseResponse{
		ID:        h.ID,
		Name:      h.Name,
		Type:      e.Kind(),
		Total:     money(model.Total(e)),
		CreatedAt: stamp(h.CreatedAt),
		UpdatedAt: stamp(h.UpdatedAt),
	}
	switch e := e.(type) {
	case *model.Pooled:
		for _, it := range e.Items {
			out.Items = append(out.Items, itemResponse{Name: it.Name, Price: money(it.Price), Tag: it.Tag})
		}
	case *model.Event:
		out.Price = money(e.Price)
		out.Participants = e.Participants
		for _, x := range e.Extras {
			out.Extras = append(out.Extras, extraResponse{Label: x.Label, Price: money(x.Price), Participants: x.Participants})
		}
	case *model.Accommodation:
		out.PricePerNight = money(e.PricePerNight)
		for _, s := range e.Participants {
			out.Stays = append(out.Stays, stayResponse{User: s.User, Nights: s.Nights})
		}
		for _, x := range e.Extras {
			out.Extras = append(out.Extras, extraResponse{Label: x.Label, Price: money(x.Price)})
		}
	}
	return out
}

type costsResponse struct {
	Costs      map[string]string `json:"costs"`
	Paid       map[string]string `json:"paid"`
	Balances   map[string]string `json:"balances"`
	Total      string            `json:"total"`
	GrandTotal string            `json:"grand_total"`
}

type transferResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func toTransfers(ts []calc.Transfer) []transferResponse {
	out := make([]transferResponse, len(ts))
	for i, t := range ts {
		out[i] = transferResponse{From: t.From, To: t.To, Amount: money(t.Amount)}
	}
	return out
}

type breakdownItemResponse struct {
	Name         string        `json:"name"`
	Kind         calc.LineKind `json:"kind"`
	Tag          string        `json:"tag,omitempty"`
	UserShare    string        `json:"user_share"`
	Total        string        `json:"total"`
	Participants int           `json:"participants"`
	Nights       int           `json:"nights,omitempty"`
}

func toBreakdownItems(items []calc.BreakdownItem) []breakdownItemResponse {
	out := make([]breakdownItemResponse, len(items))
	for i, it := range items {
		out[i] = breakdownItemResponse{
			Name:         it.Name,
			Kind:         it.Kind,
			Tag:          it.Tag,
			UserShare:    money(it.UserShare),
			Total:        money(it.Total),
			Participants: it.Participants,
			Nights:       it.Nights,
		}
	}
	return out
}

type breakdownResponse struct {
	ID    string                  `json:"id"`
	Name  string                  `json:"name"`
	Type  model.Kind              `json:"type"`
	User  string                  `json:"user"`
	Items []breakdownItemResponse `json:"items"`
	Total string                  `json:"total"`
}

type expenseDetailResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Type        model.Kind              `json:"type"`
	UserAmount  string                  `json:"user_amount"`
	TotalAmount string                  `json:"total_amount"`
	Count       int                     `json:"count"`
	Items       []breakdownItemResponse `json:"items"`
}

type categoryResponse struct {
	Count  int                     `json:"count"`
	Amount string                  `json:"amount"`
	Items  []expenseDetailResponse `json:"items"`
}

func toCategory(c calc.Category) categoryResponse {
	out := categoryResponse{Count: c.Count, Amount: money(c.Amount), Items: make([]expenseDetailResponse, len(c.Items))}
	for i, d := range c.Items {
		out.Items[i] = expenseDetailResponse{
			ID:          d.ID,
			Name:        d.Name,
			Type:        d.Type,
			UserAmount:  money(d.UserAmount),
			TotalAmount: money(d.TotalAmount),
			Count:       d.Count,
			Items:       toBreakdownItems(d.Items),
		}
	}
	return out
}

type summaryResponse struct {
	User           string           `json:"user"`
	Total          string           `json:"total"`
	Pooled         categoryResponse `json:"pooled"`
	Events         categoryResponse `json:"events"`
	Accommodations categoryResponse `json:"accommodations"`
}

func toSummary(s calc.Summary) summaryResponse {
	return summaryResponse{
		User:           s.User,
		Total:          money(s.Total),
		Pooled:         toCategory(s.Pooled),
		Events:         toCategory(s.Events),
		Accommodations: toCategory(s.Accommodations),
	}
}
