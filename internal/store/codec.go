package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitter-dev/splitter/internal/model"
	"github.com/splitter-dev/splitter/internal/tags"
)

// Codec converts collections to and from their stored JSON form. Decoding
// is where loosely typed data is normalized; nothing downstream coerces
// values again.
type Codec struct {
	Tags   *tags.Service
	Logger *slog.Logger
}

// NewCodec returns a Codec that maps tag names through reg.
func NewCodec(reg *tags.Service) *Codec {
	return &Codec{Tags: reg}
}

func (c *Codec) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Codec) canonical(tag string) string {
	tag = strings.TrimSpace(tag)
	if c.Tags == nil {
		return tags.Default().Canonical(tag)
	}
	return c.Tags.Canonical(tag)
}

func (c *Codec) discard(key string, index int, reason string) {
	c.log().Warn("discarding stored record", "key", key, "index", index, "reason", reason)
}

// records splits a stored collection into its elements. Empty input is an
// empty collection; anything other than a JSON array is an error.
func records(key string, data []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	return raw, nil
}

func isObject(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '{'
}

// amount is a money value that accepts a JSON number or a numeric string.
// Anything else, and any negative value, decodes to zero.
type amount decimal.Decimal

func (a *amount) UnmarshalJSON(b []byte) error {
	*a = amount(ParseAmount(b))
	return nil
}

// ParseAmount applies the money normalization rule to a raw JSON value.
func ParseAmount(b []byte) decimal.Decimal {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal([]byte(s), &s); err != nil {
			return decimal.Zero
		}
		s = strings.TrimSpace(s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// nights accepts a JSON number or numeric string; values below one, and
// values that do not parse, decode to one.
type nights int

func (n *nights) UnmarshalJSON(b []byte) error {
	*n = nights(ParseNights(b))
	return nil
}

// ParseNights applies the night-count normalization rule to a raw JSON value.
func ParseNights(b []byte) int {
	d := ParseAmount(b)
	if n := d.IntPart(); n >= 1 {
		return int(n)
	}
	return 1
}

// stamp is a timestamp that decodes to the zero time when unparsable.
type stamp time.Time

func (s *stamp) UnmarshalJSON(b []byte) error {
	var t time.Time
	if err := json.Unmarshal(b, &t); err == nil {
		*s = stamp(t)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

// names decodes a participant list, keeping the first occurrence of each
// non-empty string.
func names(raw json.RawMessage) []string {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool, len(elems))
	for _, e := range elems {
		var name string
		if err := json.Unmarshal(e, &name); err != nil {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Users

type wireUser struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// DecodeUsers parses the roster. Users without a name and repeated names
// are discarded; tags are de-duplicated and legacy tag names mapped.
func (c *Codec) DecodeUsers(data []byte) ([]model.User, error) {
	raw, err := records(KeyUsers, data)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		var w wireUser
		if !isObject(r) {
			c.discard(KeyUsers, i, "not an object")
			continue
		}
		if err := json.Unmarshal(r, &w); err != nil {
			c.discard(KeyUsers, i, err.Error())
			continue
		}
		name := strings.TrimSpace(w.Name)
		if name == "" {
			c.discard(KeyUsers, i, "missing name")
			continue
		}
		if seen[name] {
			c.discard(KeyUsers, i, "duplicate name "+name)
			continue
		}
		seen[name] = true
		users = append(users, model.User{Name: name, Tags: c.tagSet(w.Tags)})
	}
	return users, nil
}

func (c *Codec) tagSet(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = c.canonical(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// EncodeUsers renders the roster as a JSON array.
func (c *Codec) EncodeUsers(users []model.User) ([]byte, error) {
	out := make([]wireUser, len(users))
	for i, u := range users {
		t := u.Tags
		if t == nil {
			t = []string{}
		}
		out[i] = wireUser{Name: u.Name, Tags: t}
	}
	return marshal(KeyUsers, out)
}

// Expenses

type wireItem struct {
	Name  string `json:"name"`
	Price amount `json:"price"`
	Tag   string `json:"tag"`
}

type wireExtra struct {
	Label        string          `json:"label"`
	Name         string          `json:"name"`
	Price        amount          `json:"price"`
	Participants json.RawMessage `json:"participants"`
}

type wireStay struct {
	Name     string `json:"name"`
	UserName string `json:"userName"`
	Nights   nights `json:"nights"`
}

type wireExpense struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	CreatedAt     stamp           `json:"createdAt"`
	UpdatedAt     stamp           `json:"updatedAt"`
	Items         []wireItem      `json:"items"`
	Price         amount          `json:"price"`
	PricePerNight amount          `json:"pricePerNight"`
	Participants  json.RawMessage `json:"participants"`
	Extras        []wireExtra     `json:"extras"`
	Nights        json.RawMessage `json:"nights"`
}

// kindOf maps stored type names, including those written by older
// releases, onto expense kinds.
func kindOf(t string) (model.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", string(model.KindPooled), "expense", "sammelausgabe":
		return model.KindPooled, true
	case string(model.KindEvent):
		return model.KindEvent, true
	case string(model.KindAccommodation):
		return model.KindAccommodation, true
	}
	return "", false
}

// DecodeExpenses parses the expense collection. Records that are not
// objects, lack an id or name, repeat an earlier id or carry an unknown
// type are discarded and logged.
func (c *Codec) DecodeExpenses(data []byte) ([]model.Expense, error) {
	raw, err := records(KeyExpenses, data)
	if err != nil {
		return nil, err
	}
	expenses := make([]model.Expense, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		if !isObject(r) {
			c.discard(KeyExpenses, i, "not an object")
			continue
		}
		var w wireExpense
		if err := json.Unmarshal(r, &w); err != nil {
			c.discard(KeyExpenses, i, err.Error())
			continue
		}
		w.ID = strings.TrimSpace(w.ID)
		w.Name = strings.TrimSpace(w.Name)
		switch {
		case w.ID == "":
			c.discard(KeyExpenses, i, "missing id")
			continue
		case w.Name == "":
			c.discard(KeyExpenses, i, "missing name")
			continue
		case seen[w.ID]:
			c.discard(KeyExpenses, i, "duplicate id "+w.ID)
			continue
		}
		kind, ok := kindOf(w.Type)
		if !ok {
			c.discard(KeyExpenses, i, "unknown type "+w.Type)
			continue
		}
		seen[w.ID] = true
		expenses = append(expenses, c.expense(kind, &w))
	}
	return expenses, nil
}

func (c *Codec) expense(kind model.Kind, w *wireExpense) model.Expense {
	h := model.Header{
		ID:        w.ID,
		Name:      w.Name,
		CreatedAt: time.Time(w.CreatedAt),
		UpdatedAt: time.Time(w.UpdatedAt),
	}
	switch kind {
	case model.KindEvent:
		ev := &model.Event{
			Header:       h,
			Price:        decimal.Decimal(w.Price),
			Participants: names(w.Participants),
		}
		for _, x := range w.Extras {
			ev.Extras = append(ev.Extras, model.EventExtra{
				Label:        extraLabel(x),
				Price:        decimal.Decimal(x.Price),
				Participants: names(x.Participants),
			})
		}
		return ev
	case model.KindAccommodation:
		a := &model.Accommodation{
			Header:        h,
			PricePerNight: decimal.Decimal(w.PricePerNight),
			Participants:  stays(w.Participants, w.Nights),
		}
		for _, x := range w.Extras {
			a.Extras = append(a.Extras, model.Extra{
				Label: extraLabel(x),
				Price: decimal.Decimal(x.Price),
			})
		}
		return a
	default:
		p := &model.Pooled{Header: h}
		for _, it := range w.Items {
			p.Items = append(p.Items, model.PooledItem{
				Name:  strings.TrimSpace(it.Name),
				Price: decimal.Decimal(it.Price),
				Tag:   c.canonical(it.Tag),
			})
		}
		return p
	}
}

func extraLabel(x wireExtra) string {
	if x.Label != "" {
		return strings.TrimSpace(x.Label)
	}
	return strings.TrimSpace(x.Name)
}

// stays decodes accommodation guests. Entries may be objects carrying name
// or userName plus nights, or bare names. Older data kept a name-to-nights
// map instead of a list; it is used when the list is empty.
func stays(raw, legacyRaw json.RawMessage) []model.Stay {
	var elems []json.RawMessage
	_ = json.Unmarshal(raw, &elems)
	var legacy map[string]nights
	if isObject(legacyRaw) {
		_ = json.Unmarshal(legacyRaw, &legacy)
	}

	var out []model.Stay
	seen := make(map[string]bool, len(elems))
	add := func(name string, n int) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, model.Stay{User: name, Nights: n})
	}
	for _, e := range elems {
		if isObject(e) {
			var s wireStay
			if err := json.Unmarshal(e, &s); err != nil {
				continue
			}
			if s.Nights < 1 {
				s.Nights = 1
			}
			name := s.Name
			if name == "" {
				name = s.UserName
			}
			add(name, int(s.Nights))
			continue
		}
		var name string
		if err := json.Unmarshal(e, &name); err == nil {
			add(name, 1)
		}
	}
	if len(out) == 0 && len(legacy) > 0 {
		keys := make([]string, 0, len(legacy))
		for k := range legacy {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k, int(legacy[k]))
		}
	}
	return out
}

type wireItemOut struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Tag   string          `json:"tag"`
}

type wireExtraOut struct {
	Label        string          `json:"label"`
	Price        decimal.Decimal `json:"price"`
	Participants []string        `json:"participants,omitempty"`
}

type wireStayOut struct {
	UserName string `json:"userName"`
	Nights   int    `json:"nights"`
}

type wireExpenseOut struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Type          model.Kind       `json:"type"`
	CreatedAt     *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time       `json:"updatedAt,omitempty"`
	Items         []wireItemOut    `json:"items,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	PricePerNight *decimal.Decimal `json:"pricePerNight,omitempty"`
	Participants  any              `json:"participants,omitempty"`
	Extras        []wireExtraOut   `json:"extras,omitempty"`
}

// EncodeExpenses renders the expense collection as a JSON array.
func (c *Codec) EncodeExpenses(expenses []model.Expense) ([]byte, error) {
	out := make([]wireExpenseOut, 0, len(expenses))
	for _, e := range expenses {
		if !model.Valid(e) {
			continue
		}
		h := e.Head()
		w := wireExpenseOut{
			ID:        h.ID,
			Name:      h.Name,
			Type:      e.Kind(),
			CreatedAt: timePtr(h.CreatedAt),
			UpdatedAt: timePtr(h.UpdatedAt),
		}
		switch e := e.(type) {
		case *model.Pooled:
			for _, it := range e.Items {
				w.Items = append(w.Items, wireItemOut(it))
			}
		case *model.Event:
			price := e.Price
			w.Price = &price
			if len(e.Participants) > 0 {
				w.Participants = e.Participants
			}
			for _, x := range e.Extras {
				w.Extras = append(w.Extras, wireExtraOut{Label: x.Label, Price: x.Price, Participants: x.Participants})
			}
		case *model.Accommodation:
			price := e.PricePerNight
			w.PricePerNight = &price
			if len(e.Participants) > 0 {
				s := make([]wireStayOut, len(e.Participants))
				for i, st := range e.Participants {
					s[i] = wireStayOut{UserName: st.User, Nights: st.Nights}
				}
				w.Participants = s
			}
			for _, x := range e.Extras {
				w.Extras = append(w.Extras, wireExtraOut{Label: x.Label, Price: x.Price})
			}
		}
		out = append(out, w)
	}
	return marshal(KeyExpenses, out)
}

// Payments

type wirePayment struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Amount    amount `json:"amount"`
	Note      string `json:"note"`
	CreatedAt stamp  `json:"createdAt"`
}

type wirePaymentOut struct {
	ID        string          `json:"id"`
	User      string          `json:"user"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// DecodePayments parses recorded payments. Records without an id or user,
// and repeated ids, are discarded.
func (c *Codec) DecodePayments(data []byte) ([]model.Payment, error) {
	raw, err := records(KeyPayments, data)
	if err != nil {
		return nil, err
	}
	payments := make([]model.Payment, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		if !isObject(r) {
			c.discard(KeyPayments, i, "not an object")
			continue
		}
		var w wirePayment
		if err := json.Unmarshal(r, &w); err != nil {
			c.discard(KeyPayments, i, err.Error())
			continue
		}
		w.ID = strings.TrimSpace(w.ID)
		w.User = strings.TrimSpace(w.User)
		switch {
		case w.ID == "":
			c.discard(KeyPayments, i, "missing id")
			continue
		case w.User == "":
			c.discard(KeyPayments, i, "missing user")
			continue
		case seen[w.ID]:
			c.discard(KeyPayments, i, "duplicate id "+w.ID)
			continue
		}
		seen[w.ID] = true
		payments = append(payments, model.Payment{
			ID:        w.ID,
			User:      w.User,
			Amount:    decimal.Decimal(w.Amount),
			Note:      w.Note,
			CreatedAt: time.Time(w.CreatedAt),
		})
	}
	return payments, nil
}

// EncodePayments renders payments as a JSON array.
func (c *Codec) EncodePayments(payments []model.Payment) ([]byte, error) {
	out := make([]wirePaymentOut, len(payments))
	for i, p := range payments {
		out[i] = wirePaymentOut{
			ID:        p.ID,
			User:      p.User,
			Amount:    p.Amount,
			Note:      p.Note,
			CreatedAt: timePtr(p.CreatedAt),
		}
	}
	return marshal(KeyPayments, out)
}

func marshal(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	return data, nil
}
