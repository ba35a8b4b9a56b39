package l1

import (
	"context"

	"github.com/robotalks/ftlink/pkg/framework"
	"github.com/robotalks/ftlink/pkg/ft"
)

// PublisherMux publishes to multiple Publishers.
type PublisherMux struct {
	Publishers []Publisher
}

// Add adds more publishers.
func (m *PublisherMux) Add(pubs ...Publisher) *PublisherMux {
	m.Publishers = append(m.Publishers, pubs...)
	return m
}

// PublishReading implements Publisher.
func (m *PublisherMux) PublishReading(ctx context.Context, r *Reading) error {
	var errs framework.AggregatedError
	for _, pub := range m.Publishers {
		errs.Add(pub.PublishReading(ctx, r))
	}
	return errs.Aggregate()
}

// PublishState implements Publisher.
func (m *PublisherMux) PublishState(ctx context.Context, state ft.State, sampling bool) error {
	var errs framework.AggregatedError
	for _, pub := range m.Publishers {
		errs.Add(pub.PublishState(ctx, state, sampling))
	}
	return errs.Aggregate()
}
