// Package tags is the process-wide tag registry: which tags exist, where
// they may be used, and which one is the general tag.
package tags

import (
	"sort"

	"github.com/splitter-dev/splitter/internal/model"
)

// Service provides in-memory lookup over the tag registry.
type Service struct {
	options []model.TagOption
	byName  map[string]model.TagOption
	general string
}

// NewService creates a Service from registry entries. An empty general
// falls back to model.DefaultGeneralTag. The general tag is always usable
// on items and never on users, whatever the entry says.
func NewService(options []model.TagOption, general string) *Service {
	if general == "" {
		general = model.DefaultGeneralTag
	}
	byName := make(map[string]model.TagOption, len(options)+1)
	var ordered []model.TagOption
	for _, o := range options {
		if o.Name == "" {
			continue
		}
		if o.Name == general {
			o.ForUsers, o.ForItems = false, true
		}
		if _, dup := byName[o.Name]; dup {
			continue
		}
		byName[o.Name] = o
		ordered = append(ordered, o)
	}
	if _, ok := byName[general]; !ok {
		g := model.TagOption{Name: general, ForItems: true}
		byName[general] = g
		ordered = append(ordered, g)
	}
	return &Service{options: ordered, byName: byName, general: general}
}

// Default returns the built-in registry.
func Default() *Service {
	return NewService(model.DefaultTags(), model.DefaultGeneralTag)
}

// All returns every registry entry.
func (s *Service) All() []model.TagOption {
	return s.options
}

// Get returns a registry entry by name.
func (s *Service) Get(name string) (model.TagOption, bool) {
	o, ok := s.byName[name]
	return o, ok
}

// Exists reports whether a tag is registered.
func (s *Service) Exists(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// General returns the name of the general tag.
func (s *Service) General() string {
	return s.general
}

// UsableOnUsers reports whether name may be attached to a user.
func (s *Service) UsableOnUsers(name string) bool {
	return s.byName[name].ForUsers
}

// UsableOnItems reports whether name may be attached to a pooled sub-item.
func (s *Service) UsableOnItems(name string) bool {
	return s.byName[name].ForItems
}

// UserTags returns the sorted names offered in user pickers.
func (s *Service) UserTags() []string {
	return s.names(func(o model.TagOption) bool { return o.ForUsers })
}

// ItemTags returns the sorted names offered in item pickers.
func (s *Service) ItemTags() []string {
	return s.names(func(o model.TagOption) bool { return o.ForItems })
}

func (s *Service) names(keep func(model.TagOption) bool) []string {
	var out []string
	for _, o := range s.options {
		if keep(o) {
			out = append(out, o.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Canonical maps a tag name from older data onto the registry: the legacy
// general tag becomes this registry's general tag, other legacy names their
// current spelling. Unknown names are returned unchanged.
func (s *Service) Canonical(name string) string {
	if s.Exists(name) {
		return name
	}
	if current, ok := model.LegacyTagNames[name]; ok {
		if current == model.DefaultGeneralTag {
			return s.general
		}
		return current
	}
	return name
}
