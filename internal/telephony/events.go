package telephony

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zulandar/helpline/internal/ivr"
)

// Call automation callback event types.
const (
	eventCallConnected      = "Microsoft.Communication.CallConnected"
	eventCallDisconnected   = "Microsoft.Communication.CallDisconnected"
	eventRecognizeCompleted = "Microsoft.Communication.RecognizeCompleted"
	eventRecognizeFailed    = "Microsoft.Communication.RecognizeFailed"
	eventPlayCompleted      = "Microsoft.Communication.PlayCompleted"
	eventPlayFailed         = "Microsoft.Communication.PlayFailed"
)

// CloudEvent is the envelope call automation callbacks arrive in.
type CloudEvent struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// callbackData is the union of the callback payload fields the dialog uses.
type callbackData struct {
	CallConnectionID string `json:"callConnectionId"`
	OperationContext string `json:"operationContext"`

	RecognitionType string `json:"recognitionType"`
	ChoiceResult    struct {
		Label            string `json:"label"`
		RecognizedPhrase string `json:"recognizedPhrase"`
	} `json:"choiceResult"`
	SpeechResult struct {
		Speech string `json:"speech"`
	} `json:"speechResult"`
	DtmfResult struct {
		Tones []string `json:"tones"`
	} `json:"dtmfResult"`

	ResultInformation struct {
		Code    int    `json:"code"`
		SubCode int    `json:"subCode"`
		Message string `json:"message"`
	} `json:"resultInformation"`
}

// ParseEvents decodes a callback request body into dialog events. Event
// types the dialog has no rule for (participant updates, disconnects the
// gateway reports after our own hangup) are skipped, not errors.
func ParseEvents(body []byte) ([]ivr.Event, error) {
	var envelopes []CloudEvent
	if err := json.Unmarshal(body, &envelopes); err != nil {
		// Single-event deliveries arrive unwrapped.
		var one CloudEvent
		if err2 := json.Unmarshal(body, &one); err2 != nil {
			return nil, fmt.Errorf("telephony: decode callback events: %w", err)
		}
		envelopes = []CloudEvent{one}
	}

	var events []ivr.Event
	for _, env := range envelopes {
		ev, ok, err := convertEvent(env)
		if err != nil {
			return nil, err
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

// convertEvent maps one callback envelope to a dialog event. The second
// return reports whether the envelope concerns the dialog at all.
func convertEvent(env CloudEvent) (ivr.Event, bool, error) {
	switch env.Type {
	case eventCallConnected, eventRecognizeCompleted, eventRecognizeFailed,
		eventPlayCompleted, eventPlayFailed:
	default:
		return ivr.Event{}, false, nil
	}

	var data callbackData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return ivr.Event{}, false, fmt.Errorf("telephony: decode %s data: %w", env.Type, err)
	}
	if data.CallConnectionID == "" {
		return ivr.Event{}, false, fmt.Errorf("telephony: %s event without call connection id", env.Type)
	}

	ev := ivr.Event{
		CallID:  data.CallConnectionID,
		Context: data.OperationContext,
	}
	switch env.Type {
	case eventCallConnected:
		ev.Type = ivr.EventCallConnected
	case eventPlayCompleted:
		ev.Type = ivr.EventPlayCompleted
	case eventPlayFailed:
		ev.Type = ivr.EventPlayFailed
		ev.ReasonCode = data.ResultInformation.SubCode
		ev.ReasonMessage = data.ResultInformation.Message
	case eventRecognizeFailed:
		ev.Type = ivr.EventRecognitionFailed
		ev.ReasonCode = data.ResultInformation.SubCode
		ev.ReasonMessage = data.ResultInformation.Message
	case eventRecognizeCompleted:
		switch strings.ToLower(data.RecognitionType) {
		case "choices":
			ev.Type = ivr.EventChoiceSelected
			ev.Label = data.ChoiceResult.Label
			ev.Phrase = data.ChoiceResult.RecognizedPhrase
		case "speech":
			ev.Type = ivr.EventSpeechRecognized
			ev.Speech = data.SpeechResult.Speech
		case "dtmf":
			ev.Type = ivr.EventDtmfCaptured
			ev.Tones = data.DtmfResult.Tones
		default:
			return ivr.Event{}, false, fmt.Errorf("telephony: unknown recognition type %q", data.RecognitionType)
		}
	}
	return ev, true, nil
}
