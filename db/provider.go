package db

// DatabaseProvider abstracts the low-level key-value operations so the
// ledger store can run on different backends without knowing the
// implementation details.
type DatabaseProvider interface {
	// Get retrieves a value by key; nil when the key is absent
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair
	Put(key, value []byte) error

	// Delete removes a key-value pair
	Delete(key []byte) error

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// IteratePrefix visits all pairs under prefix in key order; the
	// callback returns false to stop iteration
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error

	// Close closes the database connection
	Close() error
}
