// Package models defines core data structures for index entries, queries, and search results.
package models

// IndexEntry is one searchable documentation topic. Entries are authored outside
// the process and treated as read-only once loaded.
type IndexEntry struct {
	ID           string   `json:"id" yaml:"id" db:"id"`
	Topic        string   `json:"topic" yaml:"topic" db:"topic"`
	SectionID    string   `json:"sectionId" yaml:"section_id" db:"section_id"`
	SectionLabel string   `json:"sectionLabel" yaml:"section_label" db:"section_label"`
	Description  string   `json:"description" yaml:"description" db:"description"`
	Keywords     []string `json:"keywords,omitempty" yaml:"keywords,omitempty" db:"keywords"`
	Icon         string   `json:"icon,omitempty" yaml:"icon,omitempty" db:"icon"`
}

// Section is one tutorial section that entries belong to.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Badge string `json:"badge,omitempty" yaml:"badge,omitempty"`
}

// Anchor returns the in-page navigation target for the entry's section.
func (e *IndexEntry) Anchor() string {
	if e.SectionID == "" {
		return ""
	}
	return "#" + e.SectionID
}
