// Package inbox abstracts the drop directory where the extraction stage
// leaves one JSON document per receipt.
package inbox

import "github.com/starford/raidho/internal/models"

// Provider is the interface for inbox file operations.
type Provider interface {
	// List returns metadata for every .json file under the inbox root.
	List() ([]models.ReceiptMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	// Used by the API to accept extracted documents over HTTP.
	Write(path string, content []byte) error
	// Remove deletes the file at path (relative to the root).
	Remove(path string) error
}
