// Package ivr implements the call dialog state machine: per-call sessions,
// input normalization, bounded retries, ticket accumulation, and the state
// transition engine that turns telephony events into gateway directives.
package ivr

// EventType identifies the kind of telephony event driving the dialog.
type EventType string

const (
	EventCallConnected     EventType = "call_connected"
	EventChoiceSelected    EventType = "choice_selected"
	EventSpeechRecognized  EventType = "speech_recognized"
	EventDtmfCaptured      EventType = "dtmf_captured"
	EventRecognitionFailed EventType = "recognition_failed"
	EventPlayCompleted     EventType = "play_completed"
	EventPlayFailed        EventType = "play_failed"
)

// Event is a single inbound telephony event. Exactly one of the payload
// groups is populated, according to Type.
type Event struct {
	Type    EventType
	CallID  string
	Context string // operation context echoed from the directive this event answers

	// Choice events.
	Label  string // matched choice label
	Phrase string // recognized phrase, if reported

	// Speech events.
	Speech string

	// DTMF events: tone names as reported by the gateway
	// ("zero".."nine", "pound", "asterisk").
	Tones []string

	// Failure events.
	ReasonCode    int // gateway subCode; 8510 means silence timeout
	ReasonMessage string
}

// reasonSilenceTimeout is the gateway subCode reported when the caller said
// nothing before the recognition timeout.
const reasonSilenceTimeout = 8510
