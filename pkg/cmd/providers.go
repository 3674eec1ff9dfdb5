// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/providers"
	"github.com/kotoba-dev/kotoba/pkg/providers/audio"
	"github.com/kotoba-dev/kotoba/pkg/providers/data"
	"github.com/kotoba-dev/kotoba/pkg/providers/image"
	syncprovider "github.com/kotoba-dev/kotoba/pkg/providers/sync"
)

// registerNativeFactories binds every built-in provider type to its
// constructor. Adding a provider type means adding a line here.
func registerNativeFactories(registry *providers.Registry) error {
	bindings := []struct {
		category     providers.Category
		providerType string
		factory      providers.Factory
	}{
		{providers.CategoryData, data.TypeFile, data.NewFileProvider},
		{providers.CategoryAudio, audio.TypeForvo, audio.NewForvoProvider},
		{providers.CategoryImage, image.TypeOpenAI, image.NewOpenAIProvider},
		{providers.CategorySync, syncprovider.TypeAnkiConnect, syncprovider.NewAnkiConnectProvider},
	}

	for _, binding := range bindings {
		if err := registry.RegisterFactory(binding.category, binding.providerType, binding.factory); err != nil {
			return err
		}
	}

	return nil
}

// NewProviderRegistry builds the provider registry from the settings
// document. Configuration errors abort startup here, before any pipeline
// can run.
func NewProviderRegistry(logger *slog.Logger, cfg *config.Config) (*providers.Registry, error) {
	providersConfig, err := cfg.Providers()
	if err != nil {
		return nil, fmt.Errorf("failed to load providers configuration: %w", err)
	}

	registry := providers.NewRegistry(logger)
	if err := registerNativeFactories(registry); err != nil {
		return nil, err
	}

	if err := registry.Build(providersConfig); err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	return registry, nil
}
