package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDataBuildsOnce(t *testing.T) {
	sd, err := NewSearchData(8)
	require.NoError(t, err)

	calls := 0
	build := func() string {
		calls++
		return "blob"
	}
	assert.Equal(t, "blob", sd.GetOrBuild("0-0", build))
	assert.Equal(t, "blob", sd.GetOrBuild("0-0", build))
	assert.Equal(t, 1, calls)

	st := sd.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 1, st.Misses)
}

func TestSearchDataEvictsOldest(t *testing.T) {
	sd, err := NewSearchData(2)
	require.NoError(t, err)

	sd.GetOrBuild("a", func() string { return "a" })
	sd.GetOrBuild("b", func() string { return "b" })
	sd.GetOrBuild("c", func() string { return "c" })

	assert.False(t, sd.Has("a"))
	assert.True(t, sd.Has("b"))
	assert.True(t, sd.Has("c"))
}

func TestSearchDataPurge(t *testing.T) {
	sd, err := NewSearchData(0)
	require.NoError(t, err)

	sd.GetOrBuild("a", func() string { return "old" })
	sd.Purge()
	assert.False(t, sd.Has("a"))
	assert.Equal(t, "new", sd.GetOrBuild("a", func() string { return "new" }))
	assert.Equal(t, Stats{Entries: 1, Misses: 1}, sd.Stats())
}

func TestSearchDataConcurrent(t *testing.T) {
	sd, err := NewSearchData(16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "same", sd.GetOrBuild("x", func() string { return "same" }))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, sd.Stats().Entries)
}

func TestSearchDataResetGrowsToDataset(t *testing.T) {
	sd, err := NewSearchData(2)
	require.NoError(t, err)

	sd.GetOrBuild("a", func() string { return "a" })
	sd.Reset(5)
	assert.Equal(t, 5, sd.Capacity())
	assert.False(t, sd.Has("a"))

	ids := []string{"0-0", "0-1", "0-2", "0-3", "0-4"}
	for _, id := range ids {
		sd.GetOrBuild(id, func() string { return id })
	}
	for _, id := range ids {
		sd.GetOrBuild(id, func() string { return id })
	}
	st := sd.Stats()
	assert.EqualValues(t, 5, st.Hits, "a second pass over the dataset should hit every blob")
	assert.EqualValues(t, 5, st.Misses)

	sd.Reset(1)
	assert.Equal(t, 2, sd.Capacity(), "capacity never drops below the configured size")
}

func TestNewForDataset(t *testing.T) {
	sd, err := NewForDataset(2, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, sd.Capacity())

	sd.Reset(0)
	assert.Equal(t, 2, sd.Capacity())

	sd, err = NewForDataset(0, 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, sd.Capacity())
}
