// Package storage defines the corpus file-system abstraction.
package storage

// Provider is the interface for corpus file operations.
type Provider interface {
	// ListCategory returns the .md filenames directly inside the category
	// directory (relative to the corpus root), in directory-listing order.
	// A missing directory yields an empty list, not an error.
	ListCategory(category string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to the corpus root).
	Read(path string) ([]byte, error)
	// WriteFile atomically writes content to path (relative to the corpus root),
	// fully replacing any prior content.
	WriteFile(path string, content []byte) error
}
