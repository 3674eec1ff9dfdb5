package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

// TypeFile is the provider type string for the file-backed store.
const TypeFile = "file"

// FileProvider stores named resources as JSON documents under a root
// directory. The embedded guard runs before every operation.
type FileProvider struct {
	name  string
	root  string
	guard Guard
}

// NewFileProvider is the factory for the "file" data provider type. The
// root directory comes from options.root, defaulting to ./data.
func NewFileProvider(name string, settings config.ProviderSettings) (providers.Provider, error) {
	root := "./data"
	if value, ok := settings.Options["root"].(string); ok && value != "" {
		root = value
	}

	return &FileProvider{
		name: name,
		root: root,
		guard: Guard{
			ReadOnly:     settings.ReadOnly,
			ManagedFiles: settings.Files,
		},
	}, nil
}

func (p *FileProvider) Name() string                 { return p.name }
func (p *FileProvider) Category() providers.Category { return providers.CategoryData }

// Guard exposes the provider's permission guard, mostly for diagnostics.
func (p *FileProvider) Guard() Guard { return p.guard }

// LoadData reads the named resource as a JSON document.
func (p *FileProvider) LoadData(_ context.Context, resource string) (map[string]any, error) {
	if err := p.guard.CheckRead(resource); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p.path(resource))
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %q: %w", resource, err)
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("failed to parse resource %q: %w", resource, err)
	}

	return document, nil
}

// SaveData writes the document to the named resource. The write goes
// through a temp file and rename so a denied or failed write never leaves
// a half-written resource behind.
func (p *FileProvider) SaveData(_ context.Context, resource string, document map[string]any) error {
	if err := p.guard.CheckWrite(resource); err != nil {
		return err
	}

	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return fmt.Errorf("failed to create data root %q: %w", p.root, err)
	}

	raw, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode resource %q: %w", resource, err)
	}

	target := p.path(resource)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write resource %q: %w", resource, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to finalize resource %q: %w", resource, err)
	}

	return nil
}

// ResourceExists reports whether the named resource is present on disk.
func (p *FileProvider) ResourceExists(_ context.Context, resource string) (bool, error) {
	if err := p.guard.CheckRead(resource); err != nil {
		return false, err
	}

	_, err := os.Stat(p.path(resource))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to stat resource %q: %w", resource, err)
	}

	return true, nil
}

func (p *FileProvider) path(resource string) string {
	return filepath.Join(p.root, resource)
}
