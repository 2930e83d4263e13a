package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/windguide/internal/models"
	"github.com/hyperjump/windguide/internal/storage"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 30)

	sections := make(map[string]bool)
	for _, s := range DefaultSections() {
		sections[s.ID] = true
	}
	for _, e := range c.Entries() {
		assert.True(t, sections[e.SectionID], "entry %s has unknown section %s", e.ID, e.SectionID)
		assert.NotEmpty(t, e.SectionLabel, "entry %s", e.ID)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
sections:
  - id: basics
    label: Basics
entries:
  - id: one
    topic: Flex
    section_id: basics
    keywords: [flex, row]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	e, ok := c.Get("one")
	require.True(t, ok)
	assert.Equal(t, "Basics", e.SectionLabel)
	assert.Equal(t, []string{"flex", "row"}, e.Keywords)
	assert.Len(t, c.Sections(), 1)
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"entries":[{"id":"one","topic":"Grid","sectionId":"grid","keywords":["grid-cols-2"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	e, ok := c.Get("one")
	require.True(t, ok)
	assert.Equal(t, "CSS Grid", e.SectionLabel)
}

func TestLoadFile_JSONRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries":[],"extra":1}`), 0644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(filepath.Join(dir, "catalog.toml"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("entries: [{id: a}]"), 0644))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestXLSXRoundTrip(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, WriteXLSX(path, src))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src.Len(), got.Len())
	assert.Equal(t, src.Version(), got.Version())
	assert.Equal(t, src.Sections(), got.Sections())
}

func TestYAMLRoundTrip(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, WriteYAML(path, src))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src.Version(), got.Version())
}

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, splitKeywords(""))
	assert.Equal(t, []string{"flex", "flex-row"}, splitKeywords(" flex , ,flex-row "))
}

func TestLoad_Sources(t *testing.T) {
	ctx := context.Background()

	c, err := Load(ctx, "")
	require.NoError(t, err)
	def, _ := Default()
	assert.Equal(t, def.Version(), c.Version())

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveEntries(ctx, []*models.IndexEntry{
		{ID: "db1", Topic: "Stored", SectionID: "colors"},
	}))
	require.NoError(t, store.Close())

	c, err = Load(ctx, SQLitePrefix+dbPath)
	require.NoError(t, err)
	e, ok := c.Get("db1")
	require.True(t, ok)
	assert.Equal(t, "Colors", e.SectionLabel)
}

func TestReload_KeepsSnapshotOnFailure(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - {id: a, topic: A, section_id: colors}\n"), 0644))

	first, err := LoadFile(path)
	require.NoError(t, err)
	h := NewHolder(first)

	require.NoError(t, os.WriteFile(path, []byte("entries: [{id: a}]\n"), 0644))
	_, err = Reload(ctx, h, path)
	require.Error(t, err)
	assert.Same(t, first, h.Load())

	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - {id: b, topic: B, section_id: colors}\n"), 0644))
	next, err := Reload(ctx, h, path)
	require.NoError(t, err)
	assert.Same(t, next, h.Load())
	_, ok := h.Load().Get("b")
	assert.True(t, ok)
}

func TestWatch_RejectsUnwatchableSources(t *testing.T) {
	h := NewHolder(nil)
	_, err := Watch(context.Background(), h, "", nil, nil)
	assert.Error(t, err)
	_, err = Watch(context.Background(), h, SQLitePrefix+"x.db", nil, nil)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - {id: a, topic: A, section_id: colors}\n"), 0644))
	first, err := LoadFile(path)
	require.NoError(t, err)
	h := NewHolder(first)

	reloaded := make(chan *Catalog, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := Watch(ctx, h, path, nil, func(c *Catalog, err error) {
		if err == nil {
			reloaded <- c
		}
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - {id: b, topic: B, section_id: colors}\n"), 0644))
	select {
	case c := <-reloaded:
		_, ok := c.Get("b")
		assert.True(t, ok)
		assert.Same(t, c, h.Load())
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
}
