package cmp

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"consentbridge/internal/domain"
)

// bridgeMessage is the envelope the glue script sends over the CDP binding.
type bridgeMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge message types.
const (
	bridgeTypeReady    = "ready"
	bridgeTypeConsents = "consents"
	bridgeTypeError    = "error"
)

// consentPayloadSchema constrains the serialized per-service payload. A
// payload that fails validation is discarded as a whole — partial or
// garbage updates must never be merged into the last known consents.
const consentPayloadSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "consent"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string"},
      "consent": {
        "type": "object",
        "required": ["status"],
        "properties": {"status": {"type": "boolean"}}
      }
    }
  }
}`

var compiledPayloadSchema = jsonschema.MustCompileString("consent_payload.json", consentPayloadSchema)

// bridgeService is the vendor wire shape of one service entry.
type bridgeService struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Consent struct {
		Status bool `json:"status"`
	} `json:"consent"`
}

// parseBridgeMessage decodes one raw binding payload. For consent messages
// the payload is schema-validated before being mapped into the domain
// model; any defect rejects the whole message.
func parseBridgeMessage(raw string) (bridgeMessage, []domain.ServiceConsent, error) {
	var msg bridgeMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return bridgeMessage{}, nil, fmt.Errorf("decode bridge envelope: %w", domain.ErrPayloadInvalid)
	}
	if msg.Type != bridgeTypeConsents {
		return msg, nil, nil
	}

	var generic any
	if err := json.Unmarshal(msg.Payload, &generic); err != nil {
		return msg, nil, fmt.Errorf("decode consent payload: %w", domain.ErrPayloadInvalid)
	}
	if err := compiledPayloadSchema.Validate(generic); err != nil {
		return msg, nil, fmt.Errorf("consent payload schema: %v: %w", err, domain.ErrPayloadInvalid)
	}

	var services []bridgeService
	if err := json.Unmarshal(msg.Payload, &services); err != nil {
		return msg, nil, fmt.Errorf("map consent payload: %w", domain.ErrPayloadInvalid)
	}

	consents := make([]domain.ServiceConsent, 0, len(services))
	for _, svc := range services {
		consents = append(consents, domain.ServiceConsent{
			TemplateID: svc.ID,
			Status:     svc.Consent.Status,
			Name:       svc.Name,
		})
	}
	return msg, domain.NormalizeConsents(consents), nil
}
