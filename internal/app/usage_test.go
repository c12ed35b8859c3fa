//go:build cgo

package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/azyu/publishgpt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_UsageRecorder(t *testing.T) {
	a := newTestApp(t, "")

	recorder := a.UsageRecorder()
	require.NotNil(t, recorder)

	require.NoError(t, recorder.Record(context.Background(), types.UsageEvent{
		RunID:    a.RunID(),
		Kind:     types.UsageKindChat,
		Provider: "openai",
		Model:    "gpt-3.5-turbo",
	}))

	store, err := a.UsageStore()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a.Dir(), types.StateDir, types.UsageDBFile), store.Path())

	events, err := store.Events(context.Background(), a.RunID())
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.NoError(t, a.Close())
	assert.NoError(t, a.Close(), "close is idempotent")
}
