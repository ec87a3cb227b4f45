// Package store persists the roster, the expense collection and payments as
// opaque JSON collections behind a small key/value interface.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/splitter-dev/splitter/internal/model"
)

// Collection keys.
const (
	KeyUsers    = "users"
	KeyExpenses = "expenses"
	KeyPayments = "payments"
)

// Keys lists every collection key in load order.
var Keys = []string{KeyUsers, KeyExpenses, KeyPayments}

// Store loads and saves whole collections. Every Save overwrites the
// previous value for its key; the last writer wins.
type Store interface {
	// Load returns the stored value for key, or nil and no error when the
	// key has never been saved.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the value for key.
	Save(ctx context.Context, key string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Snapshot is the full-state export document.
type Snapshot struct {
	Users     []model.User
	Expenses  []model.Expense
	Payments  []model.Payment
	Timestamp time.Time

	// Present records which collections an imported document carried.
	Present map[string]bool
}

type wireSnapshot struct {
	Users     json.RawMessage `json:"users"`
	Expenses  json.RawMessage `json:"expenses"`
	Payments  json.RawMessage `json:"payments,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// EncodeSnapshot renders s as indented JSON.
func (c *Codec) EncodeSnapshot(s Snapshot) ([]byte, error) {
	users, err := c.EncodeUsers(s.Users)
	if err != nil {
		return nil, err
	}
	expenses, err := c.EncodeExpenses(s.Expenses)
	if err != nil {
		return nil, err
	}
	payments, err := c.EncodePayments(s.Payments)
	if err != nil {
		return nil, err
	}
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	data, err := json.MarshalIndent(wireSnapshot{
		Users:     users,
		Expenses:  expenses,
		Payments:  payments,
		Timestamp: ts.UTC(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses an export document. Collections that are missing or
// null are left out of Present so the caller can keep its current data.
func (c *Codec) DecodeSnapshot(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	s := Snapshot{Timestamp: w.Timestamp, Present: make(map[string]bool)}
	var err error
	if present(w.Users) {
		if s.Users, err = c.DecodeUsers(w.Users); err != nil {
			return Snapshot{}, err
		}
		s.Present[KeyUsers] = true
	}
	if present(w.Expenses) {
		if s.Expenses, err = c.DecodeExpenses(w.Expenses); err != nil {
			return Snapshot{}, err
		}
		s.Present[KeyExpenses] = true
	}
	if present(w.Payments) {
		if s.Payments, err = c.DecodePayments(w.Payments); err != nil {
			return Snapshot{}, err
		}
		s.Present[KeyPayments] = true
	}
	return s, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
