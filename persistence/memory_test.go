package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySaveLoadRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, []Event{{Name: "a"}, {Name: "b"}}))
	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string{loaded[0].Name, loaded[1].Name})
}

func TestMemorySaveReplacesPreviousContent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, []Event{{Name: "a"}}))
	require.NoError(t, m.Save(ctx, []Event{{Name: "b"}}))

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "b", loaded[0].Name)
}

func TestMemoryLoadReturnedSliceIsIndependentOfInternalState(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, []Event{{Name: "a"}}))

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	loaded[0].Name = "mutated"

	again, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Name)
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, []Event{{Name: "a"}}))
	require.NoError(t, m.Clear(ctx))

	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMemoryLoadOnEmptyAdapterReturnsEmptyNotError(t *testing.T) {
	m := NewMemory()
	loaded, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
