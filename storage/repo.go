package storage

// Store is a small key/value repository backing the two pieces of
// client-side session state: the tab-scoped identifier and the durable
// bearer token.
type Store interface {
	// Get retrieves the value for a key, or ErrKeyNotFound
	Get(key string) (string, error)

	// Set creates or replaces the value for a key
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Well-known keys. The names are part of the wire-adjacent contract:
// server fixtures look these up by name.
const (
	KeyTabID = "tabId"
	KeyToken = "token"
)
