package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"payvault/internal/apperr"
	"payvault/internal/webhook"
)

type WebhookHandler struct {
	router *webhook.Router
	log    zerolog.Logger
}

func NewWebhookHandler(router *webhook.Router, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		router: router,
		log:    log.With().Str("component", "webhook_handler").Logger(),
	}
}

// ProcessorWebhook receives processor notifications. Only transient
// dependency failures answer 503 so the processor redelivers; malformed
// payloads and lookup misses are acknowledged with 200 since redelivering
// them changes nothing.
func (h *WebhookHandler) ProcessorWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	evt, err := webhook.Decode(body)
	if err != nil {
		h.log.Warn().Err(err).Msg("undecodable webhook delivery dropped")
		return c.NoContent(http.StatusOK)
	}

	// Correlation id for deliveries the processor sent without one.
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}

	if err := h.router.Dispatch(ctx, evt); err != nil {
		if apperr.IsTransient(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
