package providers

import (
	"fmt"
	"sort"
)

// Set is the filtered view of the registry attached to one execution
// context: only the providers the owning pipeline is authorized to see.
type Set struct {
	byCategory map[Category]map[string]Provider
}

func newSet() *Set {
	byCategory := make(map[Category]map[string]Provider, len(Categories()))
	for _, category := range Categories() {
		byCategory[category] = make(map[string]Provider)
	}

	return &Set{byCategory: byCategory}
}

func (s *Set) add(category Category, name string, provider Provider) {
	s.byCategory[category][name] = provider
}

// Data returns the named data provider from the authorized set.
func (s *Set) Data(name string) (DataProvider, error) {
	provider, err := s.get(CategoryData, name)
	if err != nil {
		return nil, err
	}

	return provider.(DataProvider), nil
}

// Audio returns the named audio provider from the authorized set.
func (s *Set) Audio(name string) (AudioProvider, error) {
	provider, err := s.get(CategoryAudio, name)
	if err != nil {
		return nil, err
	}

	return provider.(AudioProvider), nil
}

// Image returns the named image provider from the authorized set.
func (s *Set) Image(name string) (ImageProvider, error) {
	provider, err := s.get(CategoryImage, name)
	if err != nil {
		return nil, err
	}

	return provider.(ImageProvider), nil
}

// Sync returns the named sync provider from the authorized set.
func (s *Set) Sync(name string) (SyncProvider, error) {
	provider, err := s.get(CategorySync, name)
	if err != nil {
		return nil, err
	}

	return provider.(SyncProvider), nil
}

// Has reports whether the named provider is visible in the set.
func (s *Set) Has(category Category, name string) bool {
	_, ok := s.byCategory[category][name]

	return ok
}

// Names lists the visible provider names in a category, sorted.
func (s *Set) Names(category Category) []string {
	names := make([]string, 0, len(s.byCategory[category]))
	for name := range s.byCategory[category] {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len counts the visible providers across all categories.
func (s *Set) Len() int {
	total := 0
	for _, instances := range s.byCategory {
		total += len(instances)
	}

	return total
}

func (s *Set) get(category Category, name string) (Provider, error) {
	provider, ok := s.byCategory[category][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s (not authorized for this pipeline or not configured)",
			ErrProviderNotFound, category, name)
	}

	return provider, nil
}
