package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/windguide/internal/models"
	"github.com/hyperjump/windguide/internal/storage"
)

// SQLitePrefix marks a catalog source stored in a SQLite database.
const SQLitePrefix = "sqlite://"

//go:embed default.yaml
var defaultCatalog []byte

// document is the on-disk layout of a YAML or JSON catalog.
type document struct {
	Sections []models.Section      `yaml:"sections,omitempty" json:"sections,omitempty"`
	Entries  []*models.IndexEntry `yaml:"entries" json:"entries"`
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return parseYAML(defaultCatalog)
}

// Load opens a catalog from source: empty for the bundled catalog, a sqlite://
// database path, or a .yaml, .yml, .json or .xlsx file.
func Load(ctx context.Context, source string) (*Catalog, error) {
	switch {
	case source == "":
		return Default()
	case strings.HasPrefix(source, SQLitePrefix):
		return loadSQLite(ctx, strings.TrimPrefix(source, SQLitePrefix))
	default:
		return LoadFile(source)
	}
}

// LoadFile reads a catalog file, choosing the decoder by extension.
func LoadFile(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path)
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Entries, doc.Sections)
}

func parseJSON(data []byte) (*Catalog, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Entries, doc.Sections)
}

func loadSQLite(ctx context.Context, path string) (*Catalog, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	entries, err := store.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	return New(entries, nil)
}

// WriteYAML serializes c in the layout LoadFile reads.
func WriteYAML(path string, c *Catalog) error {
	data, err := yaml.Marshal(document{Sections: c.Sections(), Entries: c.Entries()})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}
