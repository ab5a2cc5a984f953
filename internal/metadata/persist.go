package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File persistence is a thin wrapper around the document form; the document
// shape is the contract, the file handling is not.

// SaveJSON writes the store's document to path, indented.
func (m *MetadataStore) SaveJSON(path string) error {
	data, err := json.MarshalIndent(m.ToDocument(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a metadata document from path and reconstructs the store.
// The file's directory becomes the store's root path for resolving relative
// file locations.
func LoadJSON(path string) (*MetadataStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return FromDocument(&doc, filepath.Dir(path))
}

// ResolvePath resolves a relative path against the store's root path.
// Absolute paths and stores without a root pass through unchanged.
func (m *MetadataStore) ResolvePath(path string) string {
	if m.rootPath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.rootPath, path)
}
