package execution

// Key is a typed handle on one context entry, documenting the
// producer/consumer contract between two stages at compile time.
//
//	var analyzedWords = execution.Key[[]string]{Name: "analyzed_words"}
//	analyzedWords.Set(ec, words)        // producer stage
//	words, ok := analyzedWords.Get(ec)  // consumer stage
type Key[T any] struct {
	Name string
}

// Get returns the typed value for the key. ok is false when the key is
// absent or holds a value of a different type.
func (k Key[T]) Get(c *Context) (T, bool) {
	var zero T

	value, ok := c.data[k.Name]
	if !ok {
		return zero, false
	}

	typed, ok := value.(T)
	if !ok {
		return zero, false
	}

	return typed, true
}

// GetOr returns the typed value or fallback when absent or mistyped.
func (k Key[T]) GetOr(c *Context, fallback T) T {
	if value, ok := k.Get(c); ok {
		return value
	}

	return fallback
}

// Set stores a typed value under the key.
func (k Key[T]) Set(c *Context, value T) {
	c.data[k.Name] = value
}
