package events

import (
	"context"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/metrics"
	"reviewgate/internal/models"
)

// DocumentIndexer is the part of database.ElasticsearchClient the sink uses.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

// ElasticSink mirrors every event into an Elasticsearch index keyed by event id.
type ElasticSink struct {
	client DocumentIndexer
	index  string
}

func NewElasticSink(client DocumentIndexer, index string) *ElasticSink {
	return &ElasticSink{client: client, index: index}
}

func (s *ElasticSink) Index(ctx context.Context, event models.ReviewEvent) error {
	if err := s.client.IndexDocument(ctx, s.index, event.ID, event); err != nil {
		metrics.Deliveries.WithLabelValues("elasticsearch", "error").Inc()
		return errors.NewIndexWriteError(s.index, err)
	}
	metrics.Deliveries.WithLabelValues("elasticsearch", "ok").Inc()
	return nil
}
