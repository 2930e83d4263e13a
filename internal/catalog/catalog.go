// Package catalog owns the static collection of index entries and tutorial sections.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperjump/windguide/internal/models"
)

var (
	// ErrDuplicateID is returned when two entries share an id.
	ErrDuplicateID = errors.New("duplicate entry id")
	// ErrInvalidEntry is returned when an entry lacks a required field.
	ErrInvalidEntry = errors.New("invalid entry")
)

// Catalog is an immutable snapshot of entries and sections.
// Callers must not modify the slices or entries it returns.
type Catalog struct {
	entries  []*models.IndexEntry
	sections []models.Section
	byID     map[string]*models.IndexEntry
	version  string
}

// New validates entries and builds a snapshot. Missing section labels and icons
// are filled from sections. Entries are copied so later changes to the input do
// not leak into the snapshot.
func New(entries []*models.IndexEntry, sections []models.Section) (*Catalog, error) {
	if sections == nil {
		sections = DefaultSections()
	}
	sectionByID := make(map[string]models.Section, len(sections))
	for _, s := range sections {
		sectionByID[s.ID] = s
	}

	c := &Catalog{
		entries:  make([]*models.IndexEntry, 0, len(entries)),
		sections: append([]models.Section(nil), sections...),
		byID:     make(map[string]*models.IndexEntry, len(entries)),
	}
	for i, in := range entries {
		if in == nil {
			return nil, fmt.Errorf("%w: entry %d is empty", ErrInvalidEntry, i)
		}
		e := *in
		e.Keywords = append([]string(nil), in.Keywords...)
		switch {
		case e.ID == "":
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidEntry, i)
		case e.Topic == "":
			return nil, fmt.Errorf("%w: entry %q has no topic", ErrInvalidEntry, e.ID)
		case e.SectionID == "":
			return nil, fmt.Errorf("%w: entry %q has no section", ErrInvalidEntry, e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
		}
		if s, ok := sectionByID[e.SectionID]; ok {
			if e.SectionLabel == "" {
				e.SectionLabel = s.Label
			}
			if e.Icon == "" {
				e.Icon = s.Icon
			}
		}
		c.entries = append(c.entries, &e)
		c.byID[e.ID] = &e
	}

	sum, err := fingerprint(c.entries)
	if err != nil {
		return nil, err
	}
	c.version = sum
	return c, nil
}

func fingerprint(entries []*models.IndexEntry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint catalog: %w", err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8]), nil
}

// Entries returns the entries in authored order.
func (c *Catalog) Entries() []*models.IndexEntry {
	return c.entries
}

// Sections returns the section registry.
func (c *Catalog) Sections() []models.Section {
	return c.sections
}

// Get returns the entry with id.
func (c *Catalog) Get(id string) (*models.IndexEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Version identifies the snapshot's content; it changes whenever entries change.
func (c *Catalog) Version() string {
	return c.version
}
