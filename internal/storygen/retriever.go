package storygen

import (
	"context"

	"github.com/abhisek/engreader/internal/model"
)

// Retriever finds reference passages for a topic and level.
type Retriever interface {
	Retrieve(ctx context.Context, topic string, level model.Level, topK int) ([]string, error)
}

// NoopRetriever never returns passages.
type NoopRetriever struct{}

func (NoopRetriever) Retrieve(context.Context, string, model.Level, int) ([]string, error) {
	return nil, nil
}
