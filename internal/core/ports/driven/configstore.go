package driven

// ConfigStore provides access to the persisted configuration file.
// Keys are dotted paths ("ingest.chunk_chars") flattened from the file's tables.
type ConfigStore interface {
	// Get retrieves a value by key and reports whether the key exists.
	Get(key string) (any, bool)

	// GetString returns the value as a string, or "" when absent.
	GetString(key string) string

	// GetInt returns the value as an int, or 0 when absent or not numeric.
	GetInt(key string) int

	// GetStringSlice returns the value as a string slice, or nil when absent.
	GetStringSlice(key string) []string

	// Set stores a value and persists the file immediately.
	Set(key string, value any) error

	// Keys returns every key present, sorted.
	Keys() []string

	// Save persists the current configuration.
	Save() error

	// Load re-reads the configuration file.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
