package listener

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"chatnotify/internal/events"
	"chatnotify/internal/metrics"
	"chatnotify/internal/realtime"
)

const (
	minReconnect = 5 * time.Second
	maxReconnect = time.Minute
	pingPeriod   = 90 * time.Second
)

// Listener keeps a standing LISTEN subscription on the configured channels
// and feeds every translated notification into the registry. A reconnect
// re-subscribes the same channels (pq.Listener does this itself); anything
// published during the gap is lost, the database remains the source of truth.
type Listener struct {
	pg       *pq.Listener
	registry *realtime.Registry
	log      zerolog.Logger
}

// New connects and subscribes. A failure here means the service would run
// event-blind, so the caller should treat it as fatal.
func New(dsn string, channels []string, registry *realtime.Registry, log zerolog.Logger) (*Listener, error) {
	pg := pq.NewListener(dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
			log.Warn().Err(err).Msg("pg listener disconnected")
		case pq.ListenerEventReconnected:
			log.Info().Msg("pg listener reconnected")
		}
	})
	for _, ch := range channels {
		if err := pg.Listen(ch); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("listen %s: %w", ch, err)
		}
	}
	return &Listener{pg: pg, registry: registry, log: log}, nil
}

// Run consumes notifications until ctx is canceled, then closes the
// subscription.
func (l *Listener) Run(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer l.pg.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.pg.Notify:
			if n == nil {
				// nil marks a connection reset
				continue
			}
			l.handle(n.Channel, []byte(n.Extra))
		case <-ping.C:
			if err := l.pg.Ping(); err != nil {
				l.log.Warn().Err(err).Msg("pg listener ping failed")
			}
		}
	}
}

// handle translates one notification and fans it out. Malformed payloads are
// logged and dropped; they never stop the loop.
func (l *Listener) handle(channel string, payload []byte) {
	metrics.NotificationsTotal.WithLabelValues(channel).Inc()
	deliveries, err := events.Translate(channel, payload)
	if err != nil {
		metrics.TranslationDropsTotal.WithLabelValues(channel).Inc()
		l.log.Warn().Err(err).Str("channel", channel).Msg("dropping notification")
		return
	}
	for _, d := range deliveries {
		l.registry.Deliver(d.UserIDs, d.Event)
	}
}
