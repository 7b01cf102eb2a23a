package eventfeed

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/settlement"
)

// NopPublisher drops every batch. Used when no feed target is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBatch(context.Context, []settlement.Event) error {
	return nil
}
