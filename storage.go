package bloodpressure

// StorageKey is the single key the ledger is persisted under.
const StorageKey = "bp_entries"

// Storage is the durable home of the serialized ledger: one value under
// StorageKey. Implementations hold no business logic.
type Storage interface {
	// Load returns the last saved document, or nil if nothing was ever saved.
	Load() ([]byte, error)
	// Save replaces the saved document.
	Save(data []byte) error
}

// MemoryStorage keeps the document in memory. Its zero value is an empty storage.
type MemoryStorage struct {
	data  []byte
	saves int
}

// Load returns a copy of the last saved document.
func (m *MemoryStorage) Load() ([]byte, error) {
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Save keeps a copy of data.
func (m *MemoryStorage) Save(data []byte) error {
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStorage) Saves() int { return m.saves }
