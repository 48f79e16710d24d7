package main

import (
	"context"

	"github.com/guyawaked93/apposta/internal/ledger-service/service"
	"github.com/guyawaked93/apposta/internal/shared/metrics"
	"github.com/guyawaked93/apposta/pkg/contracts/events"
)

// countingPublisher conta falhas de publicação antes de devolvê-las ao service
type countingPublisher struct {
	next service.Publisher
}

func (p *countingPublisher) Publish(ctx context.Context, e events.LedgerEvent) error {
	err := p.next.Publish(ctx, e)
	if err != nil {
		metrics.EventErrors.Inc()
	}
	return err
}
