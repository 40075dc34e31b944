package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettingsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Absent key reads as empty, not as an error.
	value, err := s.GetSetting(ctx, KeyAPICredential)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, s.PutSetting(ctx, KeyAPICredential, "sk-test"))
	value, err = s.GetSetting(ctx, KeyAPICredential)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", value)

	// Upsert replaces.
	require.NoError(t, s.PutSetting(ctx, KeyAPICredential, "sk-other"))
	value, err = s.GetSetting(ctx, KeyAPICredential)
	require.NoError(t, err)
	assert.Equal(t, "sk-other", value)

	require.NoError(t, s.DeleteSetting(ctx, KeyAPICredential))
	value, err = s.GetSetting(ctx, KeyAPICredential)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	// Deleting an absent key is fine.
	require.NoError(t, s.DeleteSetting(ctx, KeyAPICredential))
}
