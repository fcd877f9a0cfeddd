package quotes

import (
	"context"
	"errors"
	"go.uber.org/zap"
	"time"
	"tradesync/internal/events"
)

// Poller refreshes the configured instruments on a fixed interval and publishes every
// quote on the bus.
type Poller struct {
	client      ClientInterface
	bus         *events.Bus
	instruments []string
	interval    time.Duration
	logger      *zap.Logger
}

// NewPoller creates a poller. A non-positive interval falls back to 30 seconds.
func NewPoller(client ClientInterface, bus *events.Bus, instruments []string, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:      client,
		bus:         bus,
		instruments: instruments,
		interval:    interval,
		logger:      logger.Named("quote-poller"),
	}
}

// Run polls until ctx is cancelled. It returns at once when there is nothing to poll.
func (p *Poller) Run(ctx context.Context) {
	if len(p.instruments) == 0 {
		p.logger.Info("No instruments configured, quote poller idle")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Starting quote poller",
		zap.Duration("interval", p.interval),
		zap.Strings("instruments", p.instruments))

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping quote poller...")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches each instrument once. Failures are logged and the rest still run.
func (p *Poller) poll(ctx context.Context) {
	for _, in := range p.instruments {
		q, err := p.client.LivePrice(ctx, in)
		switch {
		case err == nil:
			p.bus.PublishPrice(q.Instrument, q.Bid, q.Ask, q.Mid)
		case errors.Is(err, ErrNotConfigured):
			p.logger.Debug("Quote provider not configured, skipping poll")
			return
		case ctx.Err() != nil:
			return
		default:
			p.logger.Warn("Failed to refresh quote", zap.String("instrument", in), zap.Error(err))
		}
	}
}
