// Package audio implements audio-category providers (pronunciation lookup).
package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

// TypeForvo is the provider type string for the Forvo pronunciation service.
const TypeForvo = "forvo"

const defaultTimeoutSeconds = 30

var ErrMissingAPIKey = errors.New("forvo provider requires options.api_key")

// ForvoProvider fetches word pronunciations from the Forvo API. All
// network detail stays inside the handle; stages only see the generic
// request/result contract.
type ForvoProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewForvoProvider is the factory for the "forvo" audio provider type.
func NewForvoProvider(name string, settings config.ProviderSettings) (providers.Provider, error) {
	apiKey, _ := settings.Options["api_key"].(string)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := "https://apifree.forvo.com"
	if value, ok := settings.Options["base_url"].(string); ok && value != "" {
		baseURL = value
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := settings.Options["timeout_seconds"].(int); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return &ForvoProvider{
		name:    name,
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *ForvoProvider) Name() string                 { return p.name }
func (p *ForvoProvider) Category() providers.Category { return providers.CategoryAudio }

// FetchPronunciation looks up the best-rated recording for a word.
func (p *ForvoProvider) FetchPronunciation(ctx context.Context, req providers.PronunciationRequest) (*providers.AudioAsset, error) {
	endpoint := fmt.Sprintf("%s/key/%s/format/json/action/word-pronunciations/word/%s/language/%s/order/rate-desc/limit/1",
		p.baseURL, p.apiKey, url.PathEscape(req.Word), url.PathEscape(req.Language))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pronunciation request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pronunciation request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pronunciation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pronunciation request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			PathMP3  string `json:"pathmp3"`
			Username string `json:"username"`
		} `json:"items"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse pronunciation response: %w", err)
	}

	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("no pronunciation found for %q (%s)", req.Word, req.Language)
	}

	return &providers.AudioAsset{
		Word:     req.Word,
		URL:      payload.Items[0].PathMP3,
		Format:   "mp3",
		Speaker:  payload.Items[0].Username,
		Language: req.Language,
	}, nil
}
