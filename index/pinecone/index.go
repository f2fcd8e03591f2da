package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kakao-store-bot/index"
)

// pineconeIndex talks to a Pinecone serverless index over its data-plane
// REST API. Options.Location is the index host URL.
type pineconeIndex struct {
	options index.Options
	client  *http.Client
}

func (i *pineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error) {
	if topK < 1 {
		return nil, nil
	}

	req := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		"includeValues":   false,
	}
	if len(i.options.Namespace) > 0 {
		req["namespace"] = i.options.Namespace
	}

	var rsp queryResponse

	if err := i.do(ctx, http.MethodPost, "/query", req, &rsp); err != nil {
		return nil, err
	}

	matches := make([]index.Match, 0, len(rsp.Matches))
	for _, m := range rsp.Matches {
		matches = append(matches, index.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}

	return matches, nil
}

func (i *pineconeIndex) Fetch(ctx context.Context, id string) (*index.Match, error) {
	path := "/vectors/fetch?ids=" + url.QueryEscape(id)
	if len(i.options.Namespace) > 0 {
		path += "&namespace=" + url.QueryEscape(i.options.Namespace)
	}

	var rsp fetchResponse

	if err := i.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return nil, err
	}

	vec, ok := rsp.Vectors[id]
	if !ok {
		return nil, nil
	}

	return &index.Match{
		ID:       vec.ID,
		Metadata: vec.Metadata,
	}, nil
}

func (i *pineconeIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	req := map[string]any{
		"vectors": []map[string]any{
			{
				"id":       id,
				"values":   vector,
				"metadata": metadata,
			},
		},
	}
	if len(i.options.Namespace) > 0 {
		req["namespace"] = i.options.Namespace
	}

	return i.do(ctx, http.MethodPost, "/vectors/upsert", req, nil)
}

func (i *pineconeIndex) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := i.options.Location + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Api-Key", i.options.ApiKey)

	response, err := i.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("pinecone http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func NewIndex(opts ...index.Option) index.Index {
	options := index.NewOptions(opts...)

	if len(options.Location) == 0 || len(options.ApiKey) == 0 {
		panic("missing location or api key for pinecone index")
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}

	return &pineconeIndex{
		options: options,
		client:  client,
	}
}
