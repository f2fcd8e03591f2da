package index

import "context"

// Match is one nearest-neighbor hit with its raw metadata payload. Metadata
// is handed to the store normalizer untouched.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Fetch(ctx context.Context, id string) (*Match, error)
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error
}
