// Package providers builds, owns, and access-filters the external-service
// handles that pipeline stages are allowed to reach.
package providers

import "context"

// Category groups providers by the kind of service they front.
type Category string

const (
	CategoryData  Category = "data"
	CategoryAudio Category = "audio"
	CategoryImage Category = "image"
	CategorySync  Category = "sync"
)

// Categories lists every supported category in a stable order.
func Categories() []Category {
	return []Category{CategoryData, CategoryAudio, CategoryImage, CategorySync}
}

// Provider is one configured external-service handle. Handles are built
// once at registry construction and treated as immutable afterwards.
type Provider interface {
	Name() string
	Category() Category
}

// DataProvider fronts a persisted data resource (typically on-disk files).
// Every operation takes a resource identifier and runs the access checks
// of the embedded permission guard before touching the resource.
type DataProvider interface {
	Provider

	LoadData(ctx context.Context, resource string) (map[string]any, error)
	SaveData(ctx context.Context, resource string, data map[string]any) error
	ResourceExists(ctx context.Context, resource string) (bool, error)
}

// PronunciationRequest asks an audio provider for a recording of a word.
type PronunciationRequest struct {
	Word     string `json:"word"     validate:"required"`
	Language string `json:"language" validate:"required"`
}

// AudioAsset is the generic result contract of an audio provider.
type AudioAsset struct {
	Word     string `json:"word"`
	URL      string `json:"url"`
	Format   string `json:"format"`
	Speaker  string `json:"speaker,omitempty"`
	Language string `json:"language"`
}

// AudioProvider fronts a pronunciation-lookup service.
type AudioProvider interface {
	Provider

	FetchPronunciation(ctx context.Context, req PronunciationRequest) (*AudioAsset, error)
}

// ImageRequest asks an image provider to generate one illustration.
type ImageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Size   string `json:"size,omitempty"`
	Style  string `json:"style,omitempty"`
}

// ImageAsset is the generic result contract of an image provider.
type ImageAsset struct {
	Prompt string `json:"prompt"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// ImageProvider fronts an illustration-generation service.
type ImageProvider interface {
	Provider

	GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error)
}

// SyncRequest pushes a batch of flashcards to a spaced-repetition service.
type SyncRequest struct {
	Deck  string           `json:"deck" validate:"required"`
	Cards []map[string]any `json:"cards"`
}

// SyncResult reports what a synchronization push actually did.
type SyncResult struct {
	Deck    string   `json:"deck"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// SyncProvider fronts a flashcard-synchronization service.
type SyncProvider interface {
	Provider

	PushCards(ctx context.Context, req SyncRequest) (*SyncResult, error)
}
