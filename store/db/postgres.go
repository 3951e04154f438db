package db

import (
	"context"
	"database/sql"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/nakamo-io/supportflow/ai/core/embedding"
	"github.com/nakamo-io/supportflow/store"
)

// embeddingDim matches text-embedding-3-small. Change requires a migration.
const embeddingDim = 1536

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS support_documents (
	id        TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	content   TEXT NOT NULL,
	category  TEXT NOT NULL DEFAULT '',
	embedding VECTOR(1536) NOT NULL
);
`

// PostgresStore keeps documents in postgres and delegates similarity
// search to pgvector.
type PostgresStore struct {
	db       *sql.DB
	embedder embedding.Provider
	logger   *slog.Logger
}

// NewPostgres opens the postgres knowledge store and ensures the schema.
func NewPostgres(dsn string, embedder embedding.Provider, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create postgres schema")
	}
	logger.Debug("postgres knowledge store ready")
	return &PostgresStore{db: db, embedder: embedder, logger: logger}, nil
}

// Upsert implements store.Store.
func (s *PostgresStore) Upsert(ctx context.Context, doc store.SupportDocument) error {
	vec := doc.Embedding
	if vec == nil {
		var err error
		vec, err = s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return errors.Wrap(err, "embed document")
		}
	}
	if len(vec) != embeddingDim {
		return errors.Errorf("embedding has %d dimensions, want %d", len(vec), embeddingDim)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO support_documents (id, title, content, category, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			embedding = EXCLUDED.embedding`,
		doc.ID, doc.Title, doc.Content, doc.Category, pgvector.NewVector(vec))
	return errors.Wrap(err, "upsert document")
}

// Search implements store.Store. Uses pgvector cosine distance; the
// reported score is 1 - distance, so higher means closer.
func (s *PostgresStore) Search(ctx context.Context, query string, topK int) ([]store.ScoredDocument, error) {
	if topK <= 0 {
		return nil, nil
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, 1 - (embedding <=> $1) AS score
		FROM support_documents
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(queryVec), topK)
	if err != nil {
		return nil, errors.Wrap(err, "query documents")
	}
	defer rows.Close()

	var results []store.ScoredDocument
	for rows.Next() {
		var sd store.ScoredDocument
		if err := rows.Scan(&sd.Document.ID, &sd.Document.Title, &sd.Document.Content,
			&sd.Document.Category, &sd.Score); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		results = append(results, sd)
	}
	return results, errors.Wrap(rows.Err(), "iterate documents")
}

// Count implements store.Store.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM support_documents`).Scan(&n)
	return n, errors.Wrap(err, "count documents")
}

// Close implements store.Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
