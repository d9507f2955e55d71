package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitescout/sitescout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.GetSnapshot(ctx, "https://acme.com/pricing")
	assert.ErrorIs(t, err, ErrNotFound)

	snap := model.Snapshot{
		URL:         "https://acme.com/pricing",
		ContentHash: "abc123",
		Body:        "# Pricing\n\n$10/mo",
		Title:       "Pricing",
	}
	require.NoError(t, st.SaveSnapshot(ctx, snap))

	got, err := st.GetSnapshot(ctx, "https://acme.com/pricing")
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "abc123", got.ContentHash)
	assert.Equal(t, "# Pricing\n\n$10/mo", got.Body)
	assert.Equal(t, "Pricing", got.Title)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestSnapshot_UpsertReplacesByURL(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSnapshot(ctx, model.Snapshot{URL: "https://a.com", ContentHash: "v1", Body: "old"}))
	require.NoError(t, st.SaveSnapshot(ctx, model.Snapshot{URL: "https://a.com", ContentHash: "v2", Body: "new"}))

	got, err := st.GetSnapshot(ctx, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.ContentHash)
	assert.Equal(t, "new", got.Body)

	snaps, err := st.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestPruneSnapshots(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	old := model.Snapshot{
		URL:         "https://old.com",
		ContentHash: "h",
		Body:        "b",
		FetchedAt:   time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := model.Snapshot{URL: "https://fresh.com", ContentHash: "h", Body: "b"}
	require.NoError(t, st.SaveSnapshot(ctx, old))
	require.NoError(t, st.SaveSnapshot(ctx, fresh))

	n, err := st.PruneSnapshots(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = st.GetSnapshot(ctx, "https://old.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetSnapshot(ctx, "https://fresh.com")
	assert.NoError(t, err)
}

func TestChecks_SaveAndList(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveCheck(ctx, model.Check{
		URL:        "https://a.com",
		Status:     model.CheckStatusUp,
		StatusCode: 200,
		LatencyMS:  42,
	}))
	require.NoError(t, st.SaveCheck(ctx, model.Check{
		URL:        "https://a.com",
		Status:     model.CheckStatusDown,
		StatusCode: 503,
		Error:      "service unavailable",
		CheckedAt:  time.Now().UTC().Add(time.Minute),
	}))
	require.NoError(t, st.SaveCheck(ctx, model.Check{
		URL:    "https://b.com",
		Status: model.CheckStatusUp,
	}))

	checks, err := st.ListChecks(ctx, "https://a.com", 10)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	// Newest first.
	assert.Equal(t, model.CheckStatusDown, checks[0].Status)
	assert.Equal(t, "service unavailable", checks[0].Error)
	assert.Equal(t, model.CheckStatusUp, checks[1].Status)
	assert.EqualValues(t, 42, checks[1].LatencyMS)

	all, err := st.ListChecks(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLeads_UpsertAndRanking(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertLead(ctx, model.Lead{Name: "Acme", URL: "https://acme.com", Score: 55}))
	require.NoError(t, st.UpsertLead(ctx, model.Lead{Name: "Globex", URL: "https://globex.com", Score: 80}))
	require.NoError(t, st.UpsertLead(ctx, model.Lead{Name: "Acme Inc", URL: "https://acme.com", Score: 90}))

	got, err := st.ListLeads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme Inc", got[0].Name)
	assert.Equal(t, 90.0, got[0].Score)
	assert.Equal(t, "Globex", got[1].Name)
}
