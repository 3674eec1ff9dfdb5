package providers

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/kotoba-dev/kotoba/pkg/config"
)

// AuthorizationWildcard in a pipelines list makes the provider visible to
// every pipeline.
const AuthorizationWildcard = "*"

// Factory constructs one provider instance from its configured settings.
type Factory func(name string, settings config.ProviderSettings) (Provider, error)

// Registry builds and owns provider handles, grouped by category. It is
// populated once at startup and must be treated as read-only afterwards;
// concurrent registration is unsupported.
type Registry struct {
	logger    *slog.Logger
	factories map[Category]map[string]Factory
	providers map[Category]map[string]Provider

	// authorizations holds the configured pipelines list per provider,
	// keyed the same way as providers.
	authorizations map[Category]map[string][]string

	// managedFiles tracks the explicit resource scope of each data
	// provider for the build-time overlap check.
	managedFiles map[string][]string
}

// NewRegistry creates an empty registry. Factories are registered next,
// then Build instantiates the configured providers.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		logger:         logger,
		factories:      make(map[Category]map[string]Factory),
		providers:      make(map[Category]map[string]Provider),
		authorizations: make(map[Category]map[string][]string),
		managedFiles:   make(map[string][]string),
	}

	for _, category := range Categories() {
		r.factories[category] = make(map[string]Factory)
		r.providers[category] = make(map[string]Provider)
		r.authorizations[category] = make(map[string][]string)
	}

	return r
}

// RegisterFactory binds a provider type string to its constructor within a
// category. Adding a new provider type means adding a factory here at
// compile time; the table is not runtime-configurable.
func (r *Registry) RegisterFactory(category Category, providerType string, factory Factory) error {
	table, ok := r.factories[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	table[providerType] = factory

	return nil
}

// SupportedTypes lists the registered type strings for a category.
func (r *Registry) SupportedTypes(category Category) []string {
	types := make([]string, 0, len(r.factories[category]))
	for providerType := range r.factories[category] {
		types = append(types, providerType)
	}

	sort.Strings(types)

	return types
}

// Build instantiates and registers every configured provider, then runs
// the build-time validations. Configuration errors abort startup; nothing
// is deferred to first use.
func (r *Registry) Build(cfg config.ProvidersConfig) error {
	for categoryName, instances := range cfg {
		category := Category(categoryName)
		if _, ok := r.factories[category]; !ok {
			return fmt.Errorf("%w: %q (supported: %s)",
				ErrUnknownCategory, categoryName, joinCategories())
		}

		for name, settings := range instances {
			if err := r.register(category, name, settings); err != nil {
				return err
			}
		}
	}

	return r.validateFileScopes()
}

func (r *Registry) register(category Category, name string, settings config.ProviderSettings) error {
	if len(settings.Pipelines) == 0 {
		return fmt.Errorf("%w: %s.%s", ErrMissingAuthorization, category, name)
	}

	if _, exists := r.providers[category][name]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateProvider, category, name)
	}

	factory, ok := r.factories[category][settings.Type]
	if !ok {
		return fmt.Errorf("%w: %q for %s.%s (supported: %s)",
			ErrUnsupportedProviderType, settings.Type, category, name,
			strings.Join(r.SupportedTypes(category), ", "))
	}

	provider, err := factory(name, settings)
	if err != nil {
		return fmt.Errorf("failed to build provider %s.%s: %w", category, name, err)
	}

	r.providers[category][name] = provider
	r.authorizations[category][name] = slices.Clone(settings.Pipelines)

	if category == CategoryData {
		r.managedFiles[name] = slices.Clone(settings.Files)
	}

	r.logger.Debug("Registered provider",
		"category", string(category), "name", name, "type", settings.Type)

	return nil
}

// validateFileScopes rejects any pair of data providers whose explicit
// managed-files lists overlap. Providers with no list are scoped to all
// resources and exempt from the check, but that disables conflict
// protection, so it is worth a warning.
func (r *Registry) validateFileScopes() error {
	owners := make(map[string]string)

	names := make([]string, 0, len(r.managedFiles))
	for name := range r.managedFiles {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		files := r.managedFiles[name]
		if len(files) == 0 {
			r.logger.Warn("Data provider has no managed_files list, file scoping is disabled",
				"provider", name)

			continue
		}

		for _, file := range files {
			if owner, taken := owners[file]; taken {
				return fmt.Errorf("%w: %q claimed by both %q and %q",
					ErrScopeOverlap, file, owner, name)
			}

			owners[file] = name
		}
	}

	return nil
}

// ForPipeline returns the subset of providers whose authorization list
// names the pipeline or carries the wildcard. The returned set is what
// gets attached to an execution context; it is the sole access-control
// boundary, stages perform no secondary checks.
func (r *Registry) ForPipeline(pipelineName string) *Set {
	set := newSet()

	for category, instances := range r.providers {
		for name, provider := range instances {
			if r.authorized(category, name, pipelineName) {
				set.add(category, name, provider)
			}
		}
	}

	return set
}

func (r *Registry) authorized(category Category, name, pipelineName string) bool {
	for _, allowed := range r.authorizations[category][name] {
		if allowed == AuthorizationWildcard || allowed == pipelineName {
			return true
		}
	}

	return false
}

// GetDataProvider looks up a data provider by name.
func (r *Registry) GetDataProvider(name string) (DataProvider, error) {
	provider, err := r.get(CategoryData, name)
	if err != nil {
		return nil, err
	}

	return provider.(DataProvider), nil
}

// GetAudioProvider looks up an audio provider by name.
func (r *Registry) GetAudioProvider(name string) (AudioProvider, error) {
	provider, err := r.get(CategoryAudio, name)
	if err != nil {
		return nil, err
	}

	return provider.(AudioProvider), nil
}

// GetImageProvider looks up an image provider by name.
func (r *Registry) GetImageProvider(name string) (ImageProvider, error) {
	provider, err := r.get(CategoryImage, name)
	if err != nil {
		return nil, err
	}

	return provider.(ImageProvider), nil
}

// GetSyncProvider looks up a synchronization provider by name.
func (r *Registry) GetSyncProvider(name string) (SyncProvider, error) {
	provider, err := r.get(CategorySync, name)
	if err != nil {
		return nil, err
	}

	return provider.(SyncProvider), nil
}

func (r *Registry) get(category Category, name string) (Provider, error) {
	provider, ok := r.providers[category][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrProviderNotFound, category, name)
	}

	return provider, nil
}

// ListDataProviders returns the registered data provider names, sorted.
func (r *Registry) ListDataProviders() []string { return r.list(CategoryData) }

// ListAudioProviders returns the registered audio provider names, sorted.
func (r *Registry) ListAudioProviders() []string { return r.list(CategoryAudio) }

// ListImageProviders returns the registered image provider names, sorted.
func (r *Registry) ListImageProviders() []string { return r.list(CategoryImage) }

// ListSyncProviders returns the registered sync provider names, sorted.
func (r *Registry) ListSyncProviders() []string { return r.list(CategorySync) }

func (r *Registry) list(category Category) []string {
	names := make([]string, 0, len(r.providers[category]))
	for name := range r.providers[category] {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func joinCategories() string {
	names := make([]string, 0, len(Categories()))
	for _, category := range Categories() {
		names = append(names, string(category))
	}

	return strings.Join(names, ", ")
}
