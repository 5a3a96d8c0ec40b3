package index

// DocIndex defines the interface for catalog record indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocIndex interface {
	UpsertDoc(row DocRow, body string) error
	DeleteDoc(link string) error
	GetChecksum(link string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies DocIndex at compile time.
var _ DocIndex = (*DB)(nil)
