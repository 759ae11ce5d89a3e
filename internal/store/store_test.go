package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/reconcile"
	"github.com/roach88/quill/internal/schema"
	"github.com/roach88/quill/internal/settings"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot() settings.Snapshot {
	return settings.Snapshot{
		Profile: &settings.Profile{ScreenName: "admin", Mail: "admin@example.com"},
		Site: &settings.Site{
			SiteURL: "http://example.com", Title: "Example",
			Timezone: settings.DefaultTimezoneOffset,
		},
		Permalink: &settings.Permalink{Pattern: "/archives/[cid:digital]/"},
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestBaselineRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lookups := schema.Lookups{
		Languages:  []string{"en_US", "zh_CN"},
		FrontPages: []schema.FrontPageCandidate{{Value: "page:2", Name: "About"}},
	}
	require.NoError(t, s.SaveBaseline(ctx, testSnapshot(), lookups, time.Now()))

	snap, got, err := s.LoadBaseline(ctx)
	require.NoError(t, err)

	require.NotNil(t, snap.Profile)
	assert.Equal(t, "admin", snap.Profile.ScreenName)
	require.NotNil(t, snap.Site)
	assert.Equal(t, int64(settings.DefaultTimezoneOffset), snap.Site.Timezone)
	require.NotNil(t, snap.Permalink)
	assert.Equal(t, "/archives/[cid:digital]/", snap.Permalink.Pattern)

	// Domains never pulled stay nil.
	assert.Nil(t, snap.Notify)
	assert.Nil(t, snap.Discussion)

	assert.Equal(t, lookups.Languages, got.Languages)
	assert.Equal(t, lookups.FrontPages, got.FrontPages)
}

func TestLoadBaselineEmpty(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.LoadBaseline(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSaveBaselineReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBaseline(ctx, testSnapshot(), schema.Lookups{}, time.Now()))

	snap := testSnapshot()
	snap.Site.Title = "Renamed"
	require.NoError(t, s.SaveBaseline(ctx, snap, schema.Lookups{}, time.Now()))

	loaded, _, err := s.LoadBaseline(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Site.Title)
}

func TestSaveDomain(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBaseline(ctx, testSnapshot(), schema.Lookups{}, time.Now()))

	snap := testSnapshot()
	snap.Site.Title = "After Save"
	require.NoError(t, s.SaveDomain(ctx, snap, settings.DomainSite, time.Now()))

	loaded, _, err := s.LoadBaseline(ctx)
	require.NoError(t, err)
	assert.Equal(t, "After Save", loaded.Site.Title)
	// Other domains are untouched.
	assert.Equal(t, "admin", loaded.Profile.ScreenName)

	// A domain missing from the snapshot cannot be written.
	err = s.SaveDomain(ctx, snap, settings.DomainNotify, time.Now())
	require.Error(t, err)
}

func TestSaveLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	entries := []reconcile.AuditEntry{
		{Token: "batch-1", Domain: settings.DomainProfile, Status: "ok", Started: started, Finished: started.Add(time.Second)},
		{Token: "batch-1", Domain: settings.DomainSite, Status: "error", Error: "timeout", Started: started.Add(2 * time.Second), Finished: started.Add(3 * time.Second)},
		{Token: "batch-2", Domain: settings.DomainSite, Status: "ok", Started: started.Add(time.Minute), Finished: started.Add(time.Minute + time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, s.Record(ctx, e))
	}

	got, err := s.ListLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, "batch-2", got[0].Token)
	assert.Equal(t, settings.DomainSite, got[1].Domain)
	assert.Equal(t, "timeout", got[1].Error)
	assert.Equal(t, "batch-1", got[2].Token)
	assert.Equal(t, started, got[2].Started)

	// Limit applies after ordering.
	got, err = s.ListLog(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "batch-2", got[0].Token)

	// Non-positive limit uses the default.
	got, err = s.ListLog(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
