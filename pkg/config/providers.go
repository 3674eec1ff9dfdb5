package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrInvalidProvidersSection = errors.New("invalid providers section")
	ErrLegacyProvidersFormat   = errors.New("legacy providers format")
)

// providersSchema constrains the shape of the providers section before any
// typed decoding happens. Semantic checks (supported types, scope overlap)
// belong to the provider registry.
const providersSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {
      "type": "object",
      "required": ["type", "pipelines"],
      "properties": {
        "type": {"type": "string", "minLength": 1},
        "pipelines": {
          "type": "array",
          "items": {"type": "string", "minLength": 1},
          "minItems": 1
        },
        "files": {"type": "array", "items": {"type": "string"}},
        "read_only": {"type": "boolean"},
        "options": {"type": "object"}
      }
    }
  }
}`

// ProviderSettings is one configured provider instance.
type ProviderSettings struct {
	Type      string         `json:"type"      validate:"required"`
	Pipelines []string       `json:"pipelines" validate:"required,min=1,dive,required"`
	Files     []string       `json:"files,omitempty"`
	ReadOnly  bool           `json:"read_only,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// ProvidersConfig maps category -> instance name -> settings.
type ProvidersConfig map[string]map[string]ProviderSettings

// Providers decodes and validates the providers section of the document.
func (c *Config) Providers() (ProvidersConfig, error) {
	raw, ok := c.values["providers"]
	if !ok {
		return ProvidersConfig{}, nil
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a mapping of categories, got %T", ErrInvalidProvidersSection, raw)
	}

	if err := rejectLegacyShape(section); err != nil {
		return nil, err
	}

	if err := validateProvidersShape(section); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProvidersSection, err)
	}

	var providers ProvidersConfig
	if err := json.Unmarshal(encoded, &providers); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProvidersSection, err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	for category, instances := range providers {
		for name, settings := range instances {
			if err := validate.Struct(settings); err != nil {
				return nil, fmt.Errorf("%w: provider %s.%s: %w", ErrInvalidProvidersSection, category, name, err)
			}
		}
	}

	return providers, nil
}

// rejectLegacyShape catches the pre-authorization format, where a category
// held a plain list of provider entries instead of named instances with a
// pipelines list.
func rejectLegacyShape(section map[string]any) error {
	for category, value := range section {
		if _, isList := value.([]any); isList {
			return fmt.Errorf(
				"%w: category %q holds a list; migrate each entry to a named instance with a `pipelines` authorization list (providers.%s.<name>.pipelines)",
				ErrLegacyProvidersFormat, category, category)
		}

		instances, ok := value.(map[string]any)
		if !ok {
			continue
		}

		for name, entry := range instances {
			fields, ok := entry.(map[string]any)
			if !ok {
				continue
			}

			if _, hasType := fields["type"]; !hasType {
				continue
			}

			if _, hasPipelines := fields["pipelines"]; !hasPipelines {
				return fmt.Errorf(
					"%w: provider %s.%s has no `pipelines` authorization list; add pipelines: [\"*\"] to keep the old allow-all behavior",
					ErrLegacyProvidersFormat, category, name)
			}
		}
	}

	return nil
}

func validateProvidersShape(section map[string]any) error {
	encoded, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProvidersSection, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(providersSchema),
		gojsonschema.NewBytesLoader(encoded),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProvidersSection, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidProvidersSection, strings.Join(details, "; "))
	}

	return nil
}
