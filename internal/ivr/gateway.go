package ivr

import "context"

// Gateway is the telephony surface the engine drives. Every handled event
// produces exactly one gateway directive. Implementations live outside this
// package; tests use MockGateway.
type Gateway interface {
	// Play speaks text to the caller. The context tag comes back on the
	// resulting PlayCompleted/PlayFailed event.
	Play(ctx context.Context, callID string, req PlayRequest) error

	// Recognize speaks a prompt and starts a recognition turn. The result
	// arrives later as a recognition event carrying req.Context.
	Recognize(ctx context.Context, callID string, req RecognizeRequest) error

	// Hangup terminates the call for everyone.
	Hangup(ctx context.Context, callID string) error

	// Transfer hands the call off to a live agent at target.
	Transfer(ctx context.Context, callID, target string) error
}

// PlayRequest is a prompt-only directive.
type PlayRequest struct {
	Text    string
	Context string
}

// RecognizeRequest is a prompt-and-listen directive.
type RecognizeRequest struct {
	Text     string
	Context  string
	Mode     Modality
	Choices  []Choice // ChoiceOnly mode
	MaxTones int      // SpeechOrDtmf mode
}

// Dispatcher receives completed tickets. Dispatch failures are logged by the
// engine and never block the conversation.
type Dispatcher interface {
	Dispatch(ctx context.Context, t *Ticket) error
}

// CallOutcome classifies how a call ended.
type CallOutcome string

const (
	OutcomeCompleted CallOutcome = "completed" // caller said goodbye
	OutcomeEscalated CallOutcome = "escalated" // handed to a live agent
	OutcomeFailed    CallOutcome = "failed"    // play failure or protocol error
	OutcomeAbandoned CallOutcome = "abandoned" // swept after going idle
)

// CallRecorder persists call outcomes. Optional; a nil recorder disables it.
type CallRecorder interface {
	RecordCall(callID string, outcome CallOutcome, tickets int)
}
