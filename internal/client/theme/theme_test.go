package theme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/schooladmin/internal/client/repositories/metadata"
)

func TestLoad_DefaultsToDark(t *testing.T) {
	p := NewPreference(metadata.NewMemoryRepository())
	require.NoError(t, p.Load(context.Background()))
	assert.True(t, p.Dark())
	assert.Equal(t, "dark", p.Name())
}

func TestLoad_StoredValue(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	require.NoError(t, repo.Set(ctx, map[string]string{KeyDarkMode: "false"}))

	p := NewPreference(repo)
	require.NoError(t, p.Load(ctx))
	assert.False(t, p.Dark())
	assert.Equal(t, light, p.Palette())
}

func TestLoad_GarbageMeansDark(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	require.NoError(t, repo.Set(ctx, map[string]string{KeyDarkMode: "maybe"}))

	p := NewPreference(repo)
	require.NoError(t, p.Load(ctx))
	assert.True(t, p.Dark())
}

func TestToggle_PersistsJSONBoolean(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	p := NewPreference(repo)

	dark, err := p.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)

	v, ok, err := repo.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "false", v)

	dark, err = p.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	v, _, _ = repo.Get(ctx, KeyDarkMode)
	assert.Equal(t, "true", v)
}
