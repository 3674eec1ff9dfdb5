// Package image implements image-category providers (illustration generation).
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

// TypeOpenAI is the provider type string for the OpenAI image endpoint.
const TypeOpenAI = "openai"

const defaultTimeoutSeconds = 60

var ErrMissingAPIKey = errors.New("openai provider requires options.api_key")

// OpenAIProvider generates illustrations through the OpenAI images API.
type OpenAIProvider struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider is the factory for the "openai" image provider type.
func NewOpenAIProvider(name string, settings config.ProviderSettings) (providers.Provider, error) {
	apiKey, _ := settings.Options["api_key"].(string)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	model := "dall-e-3"
	if value, ok := settings.Options["model"].(string); ok && value != "" {
		model = value
	}

	baseURL := "https://api.openai.com/v1"
	if value, ok := settings.Options["base_url"].(string); ok && value != "" {
		baseURL = value
	}

	return &OpenAIProvider{
		name:    name,
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}, nil
}

func (p *OpenAIProvider) Name() string                 { return p.name }
func (p *OpenAIProvider) Category() providers.Category { return providers.CategoryImage }

// GenerateImage produces one illustration for the request prompt.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, req providers.ImageRequest) (*providers.ImageAsset, error) {
	size := req.Size
	if size == "" {
		size = "1024x1024"
	}

	payload := map[string]any{
		"model":  p.model,
		"prompt": req.Prompt,
		"size":   size,
		"n":      1,
	}

	if req.Style != "" {
		payload["style"] = req.Style
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/images/generations", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse image response: %w", err)
	}

	if len(parsed.Data) == 0 {
		return nil, errors.New("image response contained no data")
	}

	return &providers.ImageAsset{
		Prompt: req.Prompt,
		URL:    parsed.Data[0].URL,
		Format: "png",
	}, nil
}
