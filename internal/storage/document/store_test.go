package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/trunk/internal/core"
)

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "memory.json"))

	doc, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, core.MemorySchemaVersion, doc.Version)
	assert.Empty(t, doc.Episodes)
	assert.Empty(t, doc.Facts)
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	doc, err := NewStore(path).Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, doc.Episodes)
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memory.json")
	store := NewStore(path)

	doc := core.EmptyMemoryDocument()
	doc.Episodes = append(doc.Episodes, core.Episode{
		ID:        "ep-1",
		Task:      "check github trending",
		Steps:     []core.EpisodeStep{{Tool: "fetch_url", Arguments: `{"url":"https://github.com/trending"}`, Result: "ok"}},
		Success:   true,
		Summary:   "fetched trending page",
		Tags:      []string{"browser"},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})
	doc.Facts = append(doc.Facts, core.Fact{
		ID:        "fact-1",
		Type:      core.FactPreference,
		Key:       "language",
		Value:     "go",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})

	require.NoError(t, store.Save(context.Background(), doc))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc.Episodes, loaded.Episodes)
	assert.Equal(t, doc.Facts, loaded.Facts)
	assert.Equal(t, core.MemorySchemaVersion, loaded.Version)
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "memory.json"))

	require.NoError(t, store.Save(context.Background(), core.EmptyMemoryDocument()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory.json", entries[0].Name())
}
