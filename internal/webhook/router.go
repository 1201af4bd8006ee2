package webhook

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"payvault/internal/apperr"
)

type Handler interface {
	Handle(ctx context.Context, evt *Event) error
}

type HandlerFunc func(ctx context.Context, evt *Event) error

func (f HandlerFunc) Handle(ctx context.Context, evt *Event) error {
	return f(ctx, evt)
}

// Router dispatches inbound events to the handler registered for their type.
// It owns the drop-or-retry decision: malformed events and local lookup
// misses are logged and swallowed (redelivery cannot fix them), transient
// dependency failures propagate so the delivery mechanism retries.
type Router struct {
	handlers map[string]Handler
	log      zerolog.Logger
}

func NewRouter(log zerolog.Logger) *Router {
	return &Router{
		handlers: make(map[string]Handler),
		log:      log.With().Str("component", "webhook_router").Logger(),
	}
}

func (r *Router) Register(eventType string, h Handler) {
	r.handlers[eventType] = h
}

func (r *Router) Dispatch(ctx context.Context, evt *Event) error {
	if evt == nil || evt.EventType == "" {
		r.log.Warn().Msg("event without type dropped")
		return nil
	}

	log := r.log.With().
		Str("event_id", evt.ID).
		Str("event_type", evt.EventType).
		Logger()

	h, ok := r.handlers[evt.EventType]
	if !ok {
		// Unknown and irrelevant event types are expected; the processor
		// sends whatever the webhook subscription covers.
		log.Debug().Msg("no handler registered, event dropped")
		return nil
	}

	err := h.Handle(ctx, evt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrMalformedEvent):
		log.Warn().Err(err).Msg("malformed event dropped")
		return nil
	case errors.Is(err, apperr.ErrNotFound):
		// The referenced entity isn't tracked locally. Could be another
		// merchant account on the same credentials, a deleted order, or a
		// processor-side test event; all read the same from here.
		log.Info().Err(err).Msg("lookup miss, event dropped")
		return nil
	case apperr.IsTransient(err):
		log.Warn().Err(err).Msg("transient failure, requesting redelivery")
		return err
	default:
		log.Error().Err(err).Msg("handler failed")
		return err
	}
}
