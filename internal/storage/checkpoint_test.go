package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/azyu/publishgpt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoints_Chapters(t *testing.T) {
	tests := []struct {
		name     string
		chapters []string
		want     []string
	}{
		{
			name:     "ordered list",
			chapters: []string{"The Beginning", "The MiddlePoint", "The End"},
			want:     []string{"The Beginning", "The MiddlePoint", "The End"},
		},
		{
			name:     "unicode titles",
			chapters: []string{"世界の始まり", "Épilogue"},
			want:     []string{"世界の始まり", "Épilogue"},
		},
		{
			name:     "empty list",
			chapters: []string{},
			want:     []string{},
		},
		{
			name:     "nil list is persisted as empty",
			chapters: nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewCheckpoints(t.TempDir())

			require.NoError(t, store.SaveChapters(tt.chapters))

			got, err := store.LoadChapters()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty list is written as an array", func(t *testing.T) {
		store := NewCheckpoints(t.TempDir())
		require.NoError(t, store.SaveChapters(nil))

		data, err := os.ReadFile(store.Path(types.ChaptersFile))
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data))
	})

	t.Run("missing file yields an empty list", func(t *testing.T) {
		store := NewCheckpoints(t.TempDir())

		got, err := store.LoadChapters()
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("null in file yields an empty list", func(t *testing.T) {
		store := NewCheckpoints(t.TempDir())
		require.NoError(t, os.WriteFile(store.Path(types.ChaptersFile), []byte("null"), 0644))

		got, err := store.LoadChapters()
		require.NoError(t, err)
		assert.Equal(t, []string{}, got)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		store := NewCheckpoints(t.TempDir())
		require.NoError(t, os.WriteFile(store.Path(types.ChaptersFile), []byte("{"), 0644))

		_, err := store.LoadChapters()
		assert.Error(t, err)
	})
}

func TestCheckpoints_BookConfig(t *testing.T) {
	store := NewCheckpoints(t.TempDir())

	_, err := store.LoadBookConfig()
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.False(t, store.Exists(types.BookConfigFile))

	cfg := &types.BookConfig{
		Title:        "The Lighthouse",
		Description:  "A keeper and a storm",
		Words:        500,
		Image:        "a lighthouse at night",
		ChapterCount: 3,
	}
	require.NoError(t, store.SaveBookConfig(cfg))
	assert.True(t, store.Exists(types.BookConfigFile))

	got, err := store.LoadBookConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestCheckpoints_ModelConfig(t *testing.T) {
	store := NewCheckpoints(t.TempDir())

	_, err := store.LoadModelConfig()
	assert.ErrorIs(t, err, ErrCheckpointNotFound)

	require.NoError(t, store.SaveModelConfig(types.DefaultModelConfig()))

	got, err := store.LoadModelConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultModelConfig(), got)
}

func TestCheckpoints_CreateEnvFile(t *testing.T) {
	dir := t.TempDir()
	store := NewCheckpoints(dir)

	created, err := store.CreateEnvFile()
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(filepath.Join(dir, types.EnvFile))
	require.NoError(t, err)
	assert.Equal(t, "OPENAI_API_KEY=\n", string(data))

	require.NoError(t, os.WriteFile(filepath.Join(dir, types.EnvFile), []byte("OPENAI_API_KEY=sk-test\n"), 0644))

	created, err = store.CreateEnvFile()
	require.NoError(t, err)
	assert.False(t, created, "existing file is left alone")

	data, err = os.ReadFile(filepath.Join(dir, types.EnvFile))
	require.NoError(t, err)
	assert.Equal(t, "OPENAI_API_KEY=sk-test\n", string(data))
}
