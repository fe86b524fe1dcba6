package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
)

type fakeStore struct {
	doc     core.MemoryDocument
	saves   int
	saveErr error
}

func (s *fakeStore) Load(_ context.Context) (core.MemoryDocument, error) {
	return s.doc, nil
}

func (s *fakeStore) Save(_ context.Context, doc core.MemoryDocument) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.doc = doc
	return nil
}

func testAgentConfig() *config.AgentConfig {
	return &config.AgentConfig{
		MaxEpisodes:       2,
		MaxFacts:          5,
		ScoreCutoff:       0.1,
		TextWeight:        0.5,
		TagWeight:         0.3,
		RecencyWeight:     0.2,
		RecencyWindowDays: 30,
	}
}

func newTestManager(t *testing.T, store *fakeStore) *Manager {
	t.Helper()

	m, err := NewManager(context.Background(), store, testAgentConfig())
	require.NoError(t, err)

	ids := 0
	m.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	return m
}

func TestRecordPersistsEpisode(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)

	episode, err := m.Record(context.Background(), "search github trending",
		[]core.EpisodeStep{{Tool: "fetch_url", Arguments: `{"url":"x"}`, Result: "ok"}},
		true, "fetched the page", nil)

	require.NoError(t, err)
	assert.Equal(t, "id-1", episode.ID)
	assert.Equal(t, []string{"search"}, episode.Tags)
	assert.Equal(t, 1, store.saves)
	require.Len(t, store.doc.Episodes, 1)
	assert.Equal(t, episode, store.doc.Episodes[0])
}

func TestRecordSaveFailureKeepsEpisodeInMemory(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument(), saveErr: errors.New("disk full")}
	m := newTestManager(t, store)

	episode, err := m.Record(context.Background(), "some task", nil, true, "", []string{"code"})

	require.Error(t, err)
	assert.NotEmpty(t, episode.ID)
	got, ok := m.Episode(episode.ID)
	assert.True(t, ok)
	assert.Equal(t, episode, got)
}

func TestRecallPrefersFreshAndSimilarEpisodes(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	store.doc.Episodes = nil
	m.doc.Episodes = []core.Episode{
		{ID: "old", Task: "check github trending", Success: true, Tags: []string{"search"}, Timestamp: now.AddDate(0, 0, -40)},
		{ID: "fresh", Task: "check github trending", Success: true, Tags: []string{"search"}, Timestamp: now.AddDate(0, 0, -1)},
		{ID: "failed", Task: "check github trending", Success: false, Tags: []string{"search"}, Timestamp: now},
		{ID: "offtopic", Task: "resize vacation photos", Success: true, Timestamp: now},
	}

	got := m.Recall("check github trending", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "fresh", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}

func TestRecallCapsFutureTimestamps(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	// A clock-skewed future episode earns at most the recency of a
	// brand-new one, so the tie keeps insertion order.
	m.doc.Episodes = []core.Episode{
		{ID: "current", Task: "check github trending", Success: true, Timestamp: now},
		{ID: "future", Task: "check github trending", Success: true, Timestamp: now.AddDate(0, 0, 10)},
	}

	got := m.Recall("check github trending", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "current", got[0].ID)
	assert.Equal(t, "future", got[1].ID)
}

func TestRecallRespectsLimitAndCutoff(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		m.doc.Episodes = append(m.doc.Episodes, core.Episode{
			ID: fmt.Sprintf("ep-%d", i), Task: "deploy the billing service",
			Success: true, Timestamp: now.AddDate(0, 0, -i),
		})
	}

	got := m.Recall("deploy the billing service", 2)
	assert.Len(t, got, 2)

	// keywords share nothing and every episode is outside the recency window
	for i := range m.doc.Episodes {
		m.doc.Episodes[i].Timestamp = now.AddDate(0, 0, -60)
	}
	assert.Empty(t, m.Recall("water indoor plants", 2))
}

func TestRecordFactUpsertKeepsID(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)

	first, err := m.RecordFact(context.Background(), core.FactPreference, "language", "python")
	require.NoError(t, err)

	second, err := m.RecordFact(context.Background(), core.FactPreference, "language", "go")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "go", second.Value)
	require.Len(t, store.doc.Facts, 1)
	assert.Equal(t, "go", store.doc.Facts[0].Value)

	// same key under another type is a separate fact
	third, err := m.RecordFact(context.Background(), core.FactKnowledge, "language", "golang is a nickname")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Len(t, store.doc.Facts, 2)
}

func TestFactLookups(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)
	ctx := context.Background()

	_, err := m.RecordFact(ctx, core.FactWebsite, "github trending", "https://github.com/trending")
	require.NoError(t, err)
	_, err = m.RecordFact(ctx, core.FactPreference, "editor", "helix")
	require.NoError(t, err)

	fact, ok := m.Fact(core.FactPreference, "editor")
	require.True(t, ok)
	assert.Equal(t, "helix", fact.Value)

	_, ok = m.Fact(core.FactPreference, "missing")
	assert.False(t, ok)

	assert.Len(t, m.FactsByType(core.FactWebsite), 1)

	found := m.SearchFacts("GITHUB")
	require.Len(t, found, 1)
	assert.Equal(t, "github trending", found[0].Key)
}

func TestFactsForTask(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)
	ctx := context.Background()

	_, err := m.RecordFact(ctx, core.FactWebsite, "github trending", "https://github.com/trending")
	require.NoError(t, err)
	_, err = m.RecordFact(ctx, core.FactPreference, "summary style", "short bullet points")
	require.NoError(t, err)
	_, err = m.RecordFact(ctx, core.FactKnowledge, "timezone", "Europe/Warsaw")
	require.NoError(t, err)

	facts := m.FactsForTask("get a github trending summary for me", 5)

	require.Len(t, facts, 2)
	assert.Equal(t, "github trending", facts[0].Key)
	assert.Equal(t, "summary style", facts[1].Key)

	capped := m.FactsForTask("get a github trending summary for me", 1)
	assert.Len(t, capped, 1)

	assert.Empty(t, m.FactsForTask("", 5))
}

func TestStats(t *testing.T) {
	store := &fakeStore{doc: core.EmptyMemoryDocument()}
	m := newTestManager(t, store)
	ctx := context.Background()

	_, err := m.Record(ctx, "task one", nil, true, "", []string{"code"})
	require.NoError(t, err)
	_, err = m.Record(ctx, "task two", nil, false, "", []string{"code"})
	require.NoError(t, err)
	_, err = m.RecordFact(ctx, core.FactPreference, "editor", "helix")
	require.NoError(t, err)

	stats := m.Stats()

	assert.Equal(t, 2, stats.Episodes)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.Facts)
	assert.Equal(t, 1, stats.FactsByType[core.FactPreference])
}
