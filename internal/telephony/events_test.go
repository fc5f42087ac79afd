package telephony

import (
	"testing"

	"github.com/zulandar/helpline/internal/ivr"
)

func TestParseEvents_CallConnected(t *testing.T) {
	body := []byte(`[{
		"id": "evt-1",
		"type": "Microsoft.Communication.CallConnected",
		"data": {"callConnectionId": "conn-42"}
	}]`)
	events, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Type != ivr.EventCallConnected || events[0].CallID != "conn-42" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestParseEvents_RecognizeCompleted(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ivr.Event
	}{
		{
			name: "choice",
			data: `{"callConnectionId":"c1","operationContext":"main_menu",
				"recognitionType":"choices","choiceResult":{"label":"Ticket","recognizedPhrase":"File ticket"}}`,
			want: ivr.Event{Type: ivr.EventChoiceSelected, CallID: "c1", Context: "main_menu", Label: "Ticket", Phrase: "File ticket"},
		},
		{
			name: "speech",
			data: `{"callConnectionId":"c1","operationContext":"provide_employee_id",
				"recognitionType":"speech","speechResult":{"speech":"E six seven two eight three four."}}`,
			want: ivr.Event{Type: ivr.EventSpeechRecognized, CallID: "c1", Context: "provide_employee_id", Speech: "E six seven two eight three four."},
		},
		{
			name: "dtmf",
			data: `{"callConnectionId":"c1","operationContext":"provide_employee_id",
				"recognitionType":"dtmf","dtmfResult":{"tones":["six","seven","two"]}}`,
			want: ivr.Event{Type: ivr.EventDtmfCaptured, CallID: "c1", Context: "provide_employee_id", Tones: []string{"six", "seven", "two"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`[{"type":"Microsoft.Communication.RecognizeCompleted","data":` + tt.data + `}]`)
			events, err := ParseEvents(body)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("events = %d, want 1", len(events))
			}
			got := events[0]
			if got.Type != tt.want.Type || got.CallID != tt.want.CallID || got.Context != tt.want.Context {
				t.Errorf("event = %+v, want %+v", got, tt.want)
			}
			if got.Label != tt.want.Label || got.Speech != tt.want.Speech {
				t.Errorf("payload = %+v, want %+v", got, tt.want)
			}
			if len(got.Tones) != len(tt.want.Tones) {
				t.Errorf("tones = %v, want %v", got.Tones, tt.want.Tones)
			}
		})
	}
}

func TestParseEvents_RecognizeFailedCarriesSubCode(t *testing.T) {
	body := []byte(`[{
		"type": "Microsoft.Communication.RecognizeFailed",
		"data": {
			"callConnectionId": "c1",
			"operationContext": "main_menu",
			"resultInformation": {"code": 400, "subCode": 8510, "message": "Action failed, initial silence timeout reached."}
		}
	}]`)
	events, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := events[0]
	if ev.Type != ivr.EventRecognitionFailed || ev.ReasonCode != 8510 {
		t.Errorf("event = %+v", ev)
	}
}

func TestParseEvents_SkipsUnhandledTypes(t *testing.T) {
	body := []byte(`[
		{"type": "Microsoft.Communication.ParticipantsUpdated", "data": {"callConnectionId": "c1"}},
		{"type": "Microsoft.Communication.CallDisconnected", "data": {"callConnectionId": "c1"}},
		{"type": "Microsoft.Communication.PlayCompleted", "data": {"callConnectionId": "c1", "operationContext": "ended"}}
	]`)
	events, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 || events[0].Type != ivr.EventPlayCompleted {
		t.Fatalf("events = %+v, want just the play completion", events)
	}
}

func TestParseEvents_SingleUnwrappedEvent(t *testing.T) {
	body := []byte(`{"type": "Microsoft.Communication.CallConnected", "data": {"callConnectionId": "c9"}}`)
	events, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 || events[0].CallID != "c9" {
		t.Fatalf("events = %+v", events)
	}
}

func TestParseEvents_MissingCallID(t *testing.T) {
	body := []byte(`[{"type": "Microsoft.Communication.CallConnected", "data": {}}]`)
	if _, err := ParseEvents(body); err == nil {
		t.Fatal("expected error for event without call connection id")
	}
}

func TestParseGridEvents_Validation(t *testing.T) {
	body := []byte(`[{
		"id": "sub-1",
		"eventType": "Microsoft.EventGrid.SubscriptionValidationEvent",
		"data": {"validationCode": "code-123"}
	}]`)
	events, err := ParseGridEvents(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if events[0].EventType != EventTypeSubscriptionValidation {
		t.Fatalf("type = %q", events[0].EventType)
	}
	data, err := events[0].ValidationData()
	if err != nil {
		t.Fatalf("validation data: %v", err)
	}
	if data.ValidationCode != "code-123" {
		t.Errorf("code = %q", data.ValidationCode)
	}
}

func TestParseGridEvents_IncomingCall(t *testing.T) {
	body := []byte(`[{
		"eventType": "Microsoft.Communication.IncomingCall",
		"data": {
			"incomingCallContext": "opaque-ctx",
			"correlationId": "corr-1",
			"from": {"rawId": "4:+12135550142", "phoneNumber": {"value": "+12135550142"}}
		}
	}]`)
	events, err := ParseGridEvents(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	call, err := events[0].IncomingCall()
	if err != nil {
		t.Fatalf("incoming call data: %v", err)
	}
	if call.IncomingCallContext != "opaque-ctx" || call.From.PhoneNumber.Value != "+12135550142" {
		t.Errorf("call = %+v", call)
	}
}
