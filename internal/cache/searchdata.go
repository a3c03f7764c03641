package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the minimum number of blobs kept. Reset grows the cache to
// the dataset size, since a filter pass touches every result in order and a
// smaller LRU would evict each blob before it is reused.
const DefaultSize = 4096

// SearchData holds lazily built search blobs keyed by result id. It is safe
// for concurrent use; a blob is a pure function of its result, so racing
// writers store the same value.
type SearchData struct {
	entries *lru.Cache[string, string]
	minSize int
	size    atomic.Int64
	hits    atomic.Int64
	misses  atomic.Int64
}

// Stats reports cache usage since the last Purge.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func NewSearchData(size int) (*SearchData, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create search data cache: %w", err)
	}
	sd := &SearchData{entries: entries, minSize: size}
	sd.size.Store(int64(size))
	return sd, nil
}

// NewForDataset returns a cache that holds at least n blobs.
func NewForDataset(size, n int) (*SearchData, error) {
	if size <= 0 {
		size = DefaultSize
	}
	sd, err := NewSearchData(max(size, n))
	if err != nil {
		return nil, err
	}
	sd.minSize = size
	return sd, nil
}

// GetOrBuild returns the cached blob for id, building and storing it on a miss.
func (sd *SearchData) GetOrBuild(id string, build func() string) string {
	if v, ok := sd.entries.Get(id); ok {
		sd.hits.Add(1)
		return v
	}
	sd.misses.Add(1)
	v := build()
	sd.entries.Add(id, v)
	return v
}

func (sd *SearchData) Has(id string) bool {
	return sd.entries.Contains(id)
}

// Purge drops every blob. Called whenever the dataset is replaced, since
// ids are positional and survive reloads.
func (sd *SearchData) Purge() {
	sd.entries.Purge()
	sd.hits.Store(0)
	sd.misses.Store(0)
}

// Reset purges the cache and resizes it to hold n blobs, never going below
// the configured size.
func (sd *SearchData) Reset(n int) {
	sd.Purge()
	size := max(sd.minSize, n)
	if int64(size) != sd.size.Load() {
		sd.entries.Resize(size)
		sd.size.Store(int64(size))
	}
}

func (sd *SearchData) Capacity() int {
	return int(sd.size.Load())
}

func (sd *SearchData) Stats() Stats {
	return Stats{
		Entries: sd.entries.Len(),
		Hits:    sd.hits.Load(),
		Misses:  sd.misses.Load(),
	}
}
