package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"log/slog"
	"math"
	"sort"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/nakamo-io/supportflow/ai/core/embedding"
	"github.com/nakamo-io/supportflow/store"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS support_documents (
	id        TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	content   TEXT NOT NULL,
	category  TEXT NOT NULL DEFAULT '',
	embedding BLOB NOT NULL
);
`

// SQLiteStore keeps documents in a local sqlite file. Embeddings live in
// BLOB columns and similarity is computed in process, which is fine for a
// knowledge base of this size.
type SQLiteStore struct {
	db       *sql.DB
	embedder embedding.Provider
	logger   *slog.Logger
}

// NewSQLite opens (and if needed creates) the sqlite knowledge store.
func NewSQLite(dsn string, embedder embedding.Provider, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create sqlite schema")
	}
	logger.Debug("sqlite knowledge store ready", "dsn", dsn)
	return &SQLiteStore{db: db, embedder: embedder, logger: logger}, nil
}

// Upsert implements store.Store.
func (s *SQLiteStore) Upsert(ctx context.Context, doc store.SupportDocument) error {
	vec := doc.Embedding
	if vec == nil {
		var err error
		vec, err = s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return errors.Wrap(err, "embed document")
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO support_documents (id, title, content, category, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			category = excluded.category,
			embedding = excluded.embedding`,
		doc.ID, doc.Title, doc.Content, doc.Category, encodeVector(vec))
	return errors.Wrap(err, "upsert document")
}

// Search implements store.Store.
func (s *SQLiteStore) Search(ctx context.Context, query string, topK int) ([]store.ScoredDocument, error) {
	if topK <= 0 {
		return nil, nil
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, category, embedding FROM support_documents`)
	if err != nil {
		return nil, errors.Wrap(err, "query documents")
	}
	defer rows.Close()

	var results []store.ScoredDocument
	for rows.Next() {
		var doc store.SupportDocument
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Category, &blob); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		doc.Embedding = decodeVector(blob)
		results = append(results, store.ScoredDocument{
			Document: doc,
			Score:    cosineSimilarity(queryVec, doc.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate documents")
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count implements store.Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM support_documents`).Scan(&n)
	return n, errors.Wrap(err, "count documents")
}

// Close implements store.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
