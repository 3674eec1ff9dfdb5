// Package sync implements synchronization-category providers
// (spaced-repetition flashcard pushes).
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

// TypeAnkiConnect is the provider type string for the AnkiConnect bridge.
const TypeAnkiConnect = "ankiconnect"

const (
	defaultEndpoint       = "http://localhost:8765"
	defaultTimeoutSeconds = 30
	apiVersion            = 6
)

// AnkiConnectProvider pushes flashcards to a running Anki instance via the
// AnkiConnect JSON API.
type AnkiConnectProvider struct {
	name     string
	endpoint string
	model    string
	client   *http.Client
}

// NewAnkiConnectProvider is the factory for the "ankiconnect" sync
// provider type.
func NewAnkiConnectProvider(name string, settings config.ProviderSettings) (providers.Provider, error) {
	endpoint := defaultEndpoint
	if value, ok := settings.Options["endpoint"].(string); ok && value != "" {
		endpoint = value
	}

	model := "Basic"
	if value, ok := settings.Options["note_model"].(string); ok && value != "" {
		model = value
	}

	return &AnkiConnectProvider{
		name:     name,
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}, nil
}

func (p *AnkiConnectProvider) Name() string                 { return p.name }
func (p *AnkiConnectProvider) Category() providers.Category { return providers.CategorySync }

// PushCards adds each card of the request as a note in the target deck.
// Individual card failures are collected rather than aborting the batch.
func (p *AnkiConnectProvider) PushCards(ctx context.Context, req providers.SyncRequest) (*providers.SyncResult, error) {
	result := &providers.SyncResult{Deck: req.Deck}

	for i, fields := range req.Cards {
		note := map[string]any{
			"deckName":  req.Deck,
			"modelName": p.model,
			"fields":    fields,
			"options":   map[string]any{"allowDuplicate": false},
		}

		if err := p.invoke(ctx, "addNote", map[string]any{"note": note}); err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("card %d: %v", i, err))

			continue
		}

		result.Created++
	}

	return result, nil
}

// invoke performs one AnkiConnect action call.
func (p *AnkiConnectProvider) invoke(ctx context.Context, action string, params map[string]any) error {
	payload := map[string]any{
		"action":  action,
		"version": apiVersion,
		"params":  params,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s call: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build %s call: %w", action, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s call failed: %w", action, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", action, err)
	}

	var parsed struct {
		Error *string `json:"error"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", action, err)
	}

	if parsed.Error != nil {
		return fmt.Errorf("%s rejected: %s", action, *parsed.Error)
	}

	return nil
}
