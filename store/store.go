// Package store defines the knowledge base: support documents with vector
// embeddings and similarity search over them.
package store

import "context"

// SupportDocument is one knowledge base article.
type SupportDocument struct {
	ID        string
	Title     string
	Content   string
	Category  string
	Embedding []float32
}

// ScoredDocument pairs a document with its similarity to a query.
// Score is cosine similarity in [-1, 1]; higher is closer.
type ScoredDocument struct {
	Document SupportDocument
	Score    float64
}

// Store persists support documents and answers similarity queries.
type Store interface {
	// Upsert inserts or replaces a document, embedding its content.
	Upsert(ctx context.Context, doc SupportDocument) error
	// Search returns up to topK documents most similar to the query.
	Search(ctx context.Context, query string, topK int) ([]ScoredDocument, error)
	// Count reports the number of stored documents.
	Count(ctx context.Context) (int, error)
	// Close releases the underlying connection.
	Close() error
}
