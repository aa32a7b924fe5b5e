// Package persist provides storage backends for the product store.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

// File stores the collection as a single JSON array in one file.
type File struct {
	path string
}

// NewFile returns a backend for the JSON file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Exists reports whether the data file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads and decodes the whole file. A missing file is an error.
func (f *File) Load(_ context.Context) ([]model.Product, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// Persist rewrites the file with products via a temp file and rename.
func (f *File) Persist(_ context.Context, products []model.Product) error {
	if products == nil {
		products = []model.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
