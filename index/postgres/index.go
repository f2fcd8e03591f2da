package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"kakao-store-bot/index"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"postgres",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		panic("failed to register pg index driver with otel: " + err.Error())
	}

	DRIVER = driver
}

// postgresIndex keeps store vectors in a pgvector table with the raw
// metadata payload as jsonb. Scores are cosine similarity, matching the
// hosted index providers.
type postgresIndex struct {
	options index.Options
	conn    *sql.DB
}

func (i *postgresIndex) Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error) {
	if topK < 1 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT id, metadata, 1 - (embedding <=> $1) AS score
		 FROM %s
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		i.options.Table,
	)

	rows, err := i.conn.QueryContext(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []index.Match

	for rows.Next() {
		var (
			id      string
			rawMeta []byte
			score   float64
		)
		if err := rows.Scan(&id, &rawMeta, &score); err != nil {
			return nil, err
		}

		var metadata map[string]any
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &metadata); err != nil {
				return nil, err
			}
		}

		matches = append(matches, index.Match{
			ID:       id,
			Score:    score,
			Metadata: metadata,
		})
	}

	return matches, rows.Err()
}

func (i *postgresIndex) Fetch(ctx context.Context, id string) (*index.Match, error) {
	query := fmt.Sprintf(`SELECT id, metadata FROM %s WHERE id = $1`, i.options.Table)

	var (
		recordID string
		rawMeta  []byte
	)

	err := i.conn.QueryRowContext(ctx, query, id).Scan(&recordID, &rawMeta)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &metadata); err != nil {
			return nil, err
		}
	}

	return &index.Match{
		ID:       recordID,
		Metadata: metadata,
	}, nil
}

func (i *postgresIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	rawMeta, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, embedding, metadata)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET embedding = EXCLUDED.embedding,
		     metadata = EXCLUDED.metadata,
		     updated_at = now()`,
		i.options.Table,
	)

	_, err = i.conn.ExecContext(ctx, query, id, pgvector.NewVector(vector), rawMeta)
	return err
}

func (i *postgresIndex) configure() error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				embedding vector(%d),
				metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			i.options.Table, i.options.VectorSize,
		),
	}

	for _, statement := range statements {
		if _, err := i.conn.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

func NewIndex(opts ...index.Option) index.Index {
	options := index.NewOptions(opts...)

	if len(options.Location) == 0 || options.VectorSize == 0 {
		panic("missing location or vector size for postgres index")
	}

	conn, err := sql.Open(DRIVER, options.Location)
	if err != nil {
		panic(err)
	}

	i := &postgresIndex{
		options: options,
		conn:    conn,
	}

	if err := i.configure(); err != nil {
		panic(err)
	}

	return i
}
