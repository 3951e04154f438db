package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	docs []SupportDocument
}

func (m *memStore) Upsert(_ context.Context, doc SupportDocument) error {
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memStore) Search(context.Context, string, int) ([]ScoredDocument, error) {
	return nil, nil
}

func (m *memStore) Count(context.Context) (int, error) { return len(m.docs), nil }
func (m *memStore) Close() error                       { return nil }

func TestSeedSampleData(t *testing.T) {
	s := &memStore{}
	require.NoError(t, SeedSampleData(context.Background(), s, nil))
	assert.NotEmpty(t, s.docs)
	for _, doc := range s.docs {
		assert.NotEmpty(t, doc.ID)
		assert.NotEmpty(t, doc.Title)
		assert.NotEmpty(t, doc.Content)
	}

	seeded := len(s.docs)
	require.NoError(t, SeedSampleData(context.Background(), s, nil))
	assert.Equal(t, seeded, len(s.docs), "seeding is skipped when documents exist")
}
