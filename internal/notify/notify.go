// Package notify is the boundary to notification delivery. Handlers alert a
// human through it; a failed notification must never abort the state
// mutation that preceded it, so callers only ever log the returned error.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

type Audience string

const (
	AudienceMerchant  Audience = "merchant"
	AudienceOperators Audience = "operators"
)

type Notifier interface {
	Notify(ctx context.Context, subject, body string, audience Audience) error
}

// LogNotifier writes notifications to the service log. The default until a
// mail transport is wired in deployment.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		log: log.With().Str("component", "notifier").Logger(),
	}
}

func (n *LogNotifier) Notify(_ context.Context, subject, body string, audience Audience) error {
	n.log.Info().
		Str("audience", string(audience)).
		Str("subject", subject).
		Str("body", body).
		Msg("notification")
	return nil
}
