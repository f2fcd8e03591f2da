package memory

import (
	"context"
	"maps"
	"math"
	"sort"
	"sync"

	"kakao-store-bot/index"
)

type entry struct {
	id        string
	embedding []float32
	metadata  map[string]any
}

// memoryIndex is an in-process cosine-similarity index for tests and local
// development.
type memoryIndex struct {
	options index.Options
	entries map[string]entry
	order   []string
	mtx     sync.RWMutex
}

func (i *memoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error) {
	if topK < 1 {
		return nil, nil
	}

	i.mtx.RLock()
	defer i.mtx.RUnlock()

	matches := make([]index.Match, 0, len(i.order))

	for _, id := range i.order {
		e := i.entries[id]
		matches = append(matches, index.Match{
			ID:       e.id,
			Score:    cosineSimilarity(vector, e.embedding),
			Metadata: cloneMetadata(e.metadata),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

func (i *memoryIndex) Fetch(ctx context.Context, id string) (*index.Match, error) {
	i.mtx.RLock()
	defer i.mtx.RUnlock()

	e, ok := i.entries[id]
	if !ok {
		return nil, nil
	}

	return &index.Match{
		ID:       e.id,
		Metadata: cloneMetadata(e.metadata),
	}, nil
}

func (i *memoryIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	cpy := make([]float32, len(vector))
	copy(cpy, vector)

	if _, exists := i.entries[id]; !exists {
		i.order = append(i.order, id)
	}

	i.entries[id] = entry{
		id:        id,
		embedding: cpy,
		metadata:  cloneMetadata(metadata),
	}

	return nil
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	cpy := make(map[string]any, len(metadata))
	maps.Copy(cpy, metadata)
	return cpy
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func NewIndex(opts ...index.Option) *memoryIndex {
	options := index.NewOptions(opts...)

	return &memoryIndex{
		options: options,
		entries: map[string]entry{},
		mtx:     sync.RWMutex{},
	}
}
