package webhook

import (
	"encoding/json"

	"payvault/internal/apperr"
	"payvault/internal/model"
)

// Event types this engine reacts to. Anything else the processor sends is
// logged and dropped by the router.
const (
	EventCaptureCompleted  = "PAYMENT.CAPTURE.COMPLETED"
	EventVaultTokenUpdated = "VAULT.PAYMENT-TOKEN.UPDATED"
)

// Event is the inbound notification envelope. Decoding is schema-tolerant:
// unknown top-level fields are ignored and the resource stays raw until the
// matching handler decodes it against its own expectations.
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Summary   string          `json:"summary,omitempty"`
	Resource  json.RawMessage `json:"resource"`
}

// Decode parses the envelope. A missing event type is malformed; redelivery
// cannot fix it, so the caller drops the event after logging.
func Decode(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, apperr.MalformedEvent("undecodable payload: " + err.Error())
	}
	if evt.EventType == "" {
		return nil, apperr.MalformedEvent("event_type missing")
	}
	return &evt, nil
}

// Amount mirrors the processor's money shape; the value arrives as a string.
type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// CaptureResource is the resource of a capture-completed event.
type CaptureResource struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Amount *Amount `json:"amount"`
	// FinalCapture distinguishes the capture that settles the order from a
	// partial one with more to come. Supplied by the processor, never
	// inferred.
	FinalCapture      bool   `json:"final_capture"`
	CreateTime        string `json:"create_time"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

// CardPayload is the nested card object of a vault token resource. Pointer
// fields make absence explicit so a partial event never zeroes stored data.
type CardPayload struct {
	Brand          *string        `json:"brand"`
	LastDigits     *string        `json:"last_digits"`
	Type           *string        `json:"type"`
	Expiry         *string        `json:"expiry"`
	Name           *string        `json:"name"`
	BillingAddress *model.Address `json:"billing_address"`
}

// VaultTokenResource is the resource of a vault token lifecycle event.
type VaultTokenResource struct {
	ID       string  `json:"id"`
	Status   *string `json:"status"`
	Customer struct {
		ID string `json:"id"`
	} `json:"customer"`
	PaymentSource struct {
		Card *CardPayload `json:"card"`
	} `json:"payment_source"`
	CreateTime string `json:"create_time"`
	UpdateTime string `json:"update_time"`
}
