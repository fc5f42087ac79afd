package telephony

import (
	"encoding/json"
	"fmt"
)

// Event Grid event types delivered to the incoming-call endpoint.
const (
	EventTypeSubscriptionValidation = "Microsoft.EventGrid.SubscriptionValidationEvent"
	EventTypeIncomingCall           = "Microsoft.Communication.IncomingCall"
)

// GridEvent is the Event Grid envelope.
type GridEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	Subject   string          `json:"subject"`
	Data      json.RawMessage `json:"data"`
}

// SubscriptionValidationData carries the handshake code Event Grid expects
// echoed back before it will deliver events to a new endpoint.
type SubscriptionValidationData struct {
	ValidationCode string `json:"validationCode"`
}

// IncomingCallData describes a ringing call. IncomingCallContext is the
// opaque token passed to Answer.
type IncomingCallData struct {
	IncomingCallContext string          `json:"incomingCallContext"`
	CorrelationID       string          `json:"correlationId"`
	From                CallParticipant `json:"from"`
	To                  CallParticipant `json:"to"`
}

// CallParticipant identifies one end of a call.
type CallParticipant struct {
	RawID       string `json:"rawId"`
	PhoneNumber struct {
		Value string `json:"value"`
	} `json:"phoneNumber"`
}

// ParseGridEvents decodes an Event Grid delivery body.
func ParseGridEvents(body []byte) ([]GridEvent, error) {
	var events []GridEvent
	if err := json.Unmarshal(body, &events); err != nil {
		var one GridEvent
		if err2 := json.Unmarshal(body, &one); err2 != nil {
			return nil, fmt.Errorf("telephony: decode event grid events: %w", err)
		}
		events = []GridEvent{one}
	}
	return events, nil
}

// ValidationData decodes the handshake payload of a validation event.
func (e GridEvent) ValidationData() (SubscriptionValidationData, error) {
	var data SubscriptionValidationData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return data, fmt.Errorf("telephony: decode validation data: %w", err)
	}
	return data, nil
}

// IncomingCall decodes the payload of an incoming call event.
func (e GridEvent) IncomingCall() (IncomingCallData, error) {
	var data IncomingCallData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return data, fmt.Errorf("telephony: decode incoming call data: %w", err)
	}
	return data, nil
}
