package catalog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/windguide/internal/models"
)

const (
	entriesSheet  = "entries"
	sectionsSheet = "sections"
)

var entryColumns = []string{"id", "topic", "section_id", "section_label", "description", "keywords", "icon"}

var sectionColumns = []string{"id", "label", "icon", "badge"}

// LoadXLSX reads a spreadsheet catalog. Entries come from the "entries" sheet, or
// the first sheet when none has that name; an optional "sections" sheet replaces
// the default section registry. Keywords are comma separated.
func LoadXLSX(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets: %s", path)
	}
	entrySheet := sheets[0]
	var sectionSheet string
	for _, s := range sheets {
		switch strings.ToLower(s) {
		case entriesSheet:
			entrySheet = s
		case sectionsSheet:
			sectionSheet = s
		}
	}

	rows, err := f.GetRows(entrySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", entrySheet, err)
	}
	var entries []*models.IndexEntry
	for _, rec := range records(rows) {
		entries = append(entries, &models.IndexEntry{
			ID:           rec["id"],
			Topic:        rec["topic"],
			SectionID:    rec["section_id"],
			SectionLabel: rec["section_label"],
			Description:  rec["description"],
			Keywords:     splitKeywords(rec["keywords"]),
			Icon:         rec["icon"],
		})
	}

	var sections []models.Section
	if sectionSheet != "" {
		rows, err := f.GetRows(sectionSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sectionSheet, err)
		}
		for _, rec := range records(rows) {
			sections = append(sections, models.Section{
				ID:    rec["id"],
				Label: rec["label"],
				Icon:  rec["icon"],
				Badge: rec["badge"],
			})
		}
	}
	return New(entries, sections)
}

// records maps each data row to its header names. Blank rows are skipped.
func records(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			rec[header[i]] = cell
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// WriteXLSX exports c as a spreadsheet that LoadXLSX reads back.
func WriteXLSX(path string, c *Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeRow(f, entriesSheet, 1, entryColumns); err != nil {
		return err
	}
	for i, e := range c.Entries() {
		row := []string{e.ID, e.Topic, e.SectionID, e.SectionLabel, e.Description, strings.Join(e.Keywords, ", "), e.Icon}
		if err := writeRow(f, entriesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sectionsSheet); err != nil {
		return fmt.Errorf("failed to add sections sheet: %w", err)
	}
	if err := writeRow(f, sectionsSheet, 1, sectionColumns); err != nil {
		return err
	}
	for i, s := range c.Sections() {
		if err := writeRow(f, sectionsSheet, i+2, []string{s.ID, s.Label, s.Icon, s.Badge}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
