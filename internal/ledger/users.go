package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/splitter-dev/splitter/internal/model"
)

// AddUser appends a user to the roster.
func (l *Ledger) AddUser(ctx context.Context, name string, userTags []string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, ErrEmptyName
	}
	if model.FindUser(l.users, name) >= 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrDuplicateUser, name)
	}
	ts, err := l.userTags(userTags)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{Name: name, Tags: ts}
	users := append(slices.Clone(l.users), u)
	if err := l.saveUsers(ctx, users); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// RenameUser changes a user's name. Expenses that refer to the old name are
// not rewritten.
func (l *Ledger) RenameUser(ctx context.Context, oldName, newName string) error {
	i := model.FindUser(l.users, oldName)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, oldName)
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if newName == oldName {
		return nil
	}
	if model.FindUser(l.users, newName) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, newName)
	}
	users := slices.Clone(l.users)
	users[i].Name = newName
	return l.saveUsers(ctx, users)
}

// SetUserTags replaces a user's tags.
func (l *Ledger) SetUserTags(ctx context.Context, name string, userTags []string) error {
	i := model.FindUser(l.users, name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	ts, err := l.userTags(userTags)
	if err != nil {
		return err
	}
	users := slices.Clone(l.users)
	users[i].Tags = ts
	return l.saveUsers(ctx, users)
}

// DeleteUser removes a user from the roster. Expense references are kept.
func (l *Ledger) DeleteUser(ctx context.Context, name string) error {
	i := model.FindUser(l.users, name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	return l.saveUsers(ctx, slices.Delete(slices.Clone(l.users), i, i+1))
}

// userTags canonicalizes and de-duplicates tags, rejecting any that cannot
// be attached to a user.
func (l *Ledger) userTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = l.tags.Canonical(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		if !l.tags.UsableOnUsers(t) {
			return nil, fmt.Errorf("%w: %q cannot be assigned to users", ErrUnknownTag, t)
		}
		out = append(out, t)
	}
	return out, nil
}
