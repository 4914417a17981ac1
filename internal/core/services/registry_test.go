package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func TestRegistryMirror_StartsEmpty(t *testing.T) {
	r := NewRegistryMirror(&mockAnswering{})
	assert.Empty(t, r.Documents())
	assert.False(t, r.Refreshed())
}

func TestRegistryMirror_RefreshReplaces(t *testing.T) {
	svc := &mockAnswering{documents: []domain.DocumentID{"a.pdf", "b.pdf"}}
	r := NewRegistryMirror(svc)

	docs, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{"a.pdf", "b.pdf"}, docs)
	assert.True(t, r.Refreshed())

	svc.documents = []domain.DocumentID{"c.pdf"}
	_, err = r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{"c.pdf"}, r.Documents())
}

func TestRegistryMirror_FailedRefreshKeepsMirror(t *testing.T) {
	svc := &mockAnswering{documents: []domain.DocumentID{"a.pdf"}}
	r := NewRegistryMirror(svc)
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	svc.listErr = domain.ErrTransport
	docs, err := r.Refresh(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Nil(t, docs)
	assert.Equal(t, []domain.DocumentID{"a.pdf"}, r.Documents())
}

func TestRegistryMirror_DocumentsIsCopy(t *testing.T) {
	svc := &mockAnswering{documents: []domain.DocumentID{"a.pdf"}}
	r := NewRegistryMirror(svc)
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	docs := r.Documents()
	docs[0] = "changed"
	svc.documents[0] = "changed too"

	assert.Equal(t, []domain.DocumentID{"a.pdf"}, r.Documents())
}
