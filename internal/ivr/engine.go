package ivr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/zulandar/helpline/internal/directory"
)

// DefaultDispatchTimeout bounds how long a ticket dispatch may run. A stalled
// notification service must never hang a call.
const DefaultDispatchTimeout = 90 * time.Second

// Engine is the state transition engine. Given the session for a call and one
// inbound event, it computes the next state, mutates the ticket draft, and
// issues exactly one gateway directive. It never blocks waiting for a reply;
// the reply arrives later as a new event.
type Engine struct {
	registry        *Registry
	dir             directory.Lookup
	gw              Gateway
	dispatcher      Dispatcher
	recorder        CallRecorder
	maxRetries      int
	agentNumber     string
	dispatchTimeout time.Duration
	out             io.Writer
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	Directory       directory.Lookup
	Gateway         Gateway
	Dispatcher      Dispatcher
	Recorder        CallRecorder  // optional; disables call logging when nil
	MaxRetries      int           // consecutive failures tolerated before escalation; defaults to 2
	AgentNumber     string        // transfer target; empty means escalations hang up
	DispatchTimeout time.Duration // defaults to DefaultDispatchTimeout
	Out             io.Writer     // defaults to os.Stdout
}

// NewEngine creates an Engine with a fresh session registry.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Directory == nil {
		return nil, fmt.Errorf("ivr: engine: directory is required")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("ivr: engine: gateway is required")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("ivr: engine: dispatcher is required")
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	timeout := opts.DispatchTimeout
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Engine{
		registry:        NewRegistry(),
		dir:             opts.Directory,
		gw:              opts.Gateway,
		dispatcher:      opts.Dispatcher,
		recorder:        opts.Recorder,
		maxRetries:      maxRetries,
		agentNumber:     opts.AgentNumber,
		dispatchTimeout: timeout,
		out:             out,
	}, nil
}

// ActiveCalls returns the number of live sessions.
func (e *Engine) ActiveCalls() int {
	return e.registry.Len()
}

// HandleEvent processes one inbound telephony event. Events for unknown or
// already terminated calls are logged and dropped without error: the webhook
// must still ack the gateway.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) error {
	if ev.CallID == "" {
		return fmt.Errorf("ivr: event %s missing call id", ev.Type)
	}

	if ev.Type == EventCallConnected {
		s, created := e.registry.GetOrCreate(ev.CallID)
		s.lock()
		defer s.unlock()
		s.LastEvent = time.Now()
		if !created {
			fmt.Fprintf(e.out, "ivr: call %s: duplicate connect, restarting dialog\n", ev.CallID)
		}
		s.Draft = NewTicketDraft()
		s.Employee = nil
		s.PendingPhone = ""
		return e.enter(ctx, s, StateMainMenu, "")
	}

	s, err := e.registry.Get(ev.CallID)
	if err != nil {
		fmt.Fprintf(e.out, "ivr: %s event for unknown call %s (dropped)\n", ev.Type, ev.CallID)
		return nil
	}
	s.lock()
	defer s.unlock()
	s.LastEvent = time.Now()

	switch ev.Type {
	case EventPlayCompleted:
		return e.handlePlayCompleted(ctx, s)
	case EventPlayFailed:
		fmt.Fprintf(e.out, "ivr: call %s: play failed in state %s\n", s.CallID, s.State)
		return e.release(ctx, s, OutcomeFailed)
	case EventRecognitionFailed:
		return e.handleRecognizeFailed(ctx, s, ev)
	case EventChoiceSelected, EventSpeechRecognized, EventDtmfCaptured:
		return e.handleRecognized(ctx, s, ev)
	}
	fmt.Fprintf(e.out, "ivr: call %s: no rule for event %s in state %s\n", s.CallID, ev.Type, s.State)
	return e.fatal(ctx, s)
}

// handleRecognized routes a successful recognition to the current state's
// transition. Stale results answering a superseded directive are dropped.
func (e *Engine) handleRecognized(ctx context.Context, s *Session, ev Event) error {
	if ev.Context != "" && ev.Context != string(s.State) {
		fmt.Fprintf(e.out, "ivr: call %s: stale %s result for context %q in state %s (dropped)\n",
			s.CallID, ev.Type, ev.Context, s.State)
		return nil
	}

	spec, ok := stateSpecs[s.State]
	if !ok {
		// Terminal states have no recognition outstanding.
		fmt.Fprintf(e.out, "ivr: call %s: %s event in terminal state %s\n", s.CallID, ev.Type, s.State)
		return e.fatal(ctx, s)
	}
	if !spec.Mode.accepts(ev.Type) {
		return e.retryOrEscalate(ctx, s, promptInvalidAudio)
	}

	// Any accepted recognition clears the retry counter, even when the
	// result re-prompts the same state (lookup miss, malformed DTMF). Only
	// recognition failures and modality mismatches accumulate.
	s.Retries = 0

	switch ev.Type {
	case EventChoiceSelected:
		return e.handleChoice(ctx, s, ev.Label)
	case EventSpeechRecognized:
		return e.handleSpeech(ctx, s, ev.Speech)
	case EventDtmfCaptured:
		return e.handleDtmf(ctx, s, ev.Tones)
	}
	return e.fatal(ctx, s)
}

// handleChoice applies a selected choice label to the current state.
func (e *Engine) handleChoice(ctx context.Context, s *Session, label string) error {
	switch s.State {
	case StateMainMenu:
		switch label {
		case LabelTicket:
			return e.enter(ctx, s, StateConfirmTicketIntent, "")
		case LabelAgent:
			return e.enter(ctx, s, StateConfirmTransferIntent, "")
		}
		return e.retryOrEscalate(ctx, s, promptInvalidAudio)

	case StateConfirmTicketIntent:
		switch label {
		case LabelConfirm:
			return e.enter(ctx, s, StateProvideEmployeeID, "")
		case LabelAgent:
			return e.transfer(ctx, s, promptTransferToAgent)
		}
		return e.enter(ctx, s, StateMainMenu, promptMainMenuRestart)

	case StateConfirmTransferIntent:
		if label == LabelConfirm || label == LabelAgent {
			return e.transfer(ctx, s, promptTransferToAgent)
		}
		return e.enter(ctx, s, StateMainMenu, promptMainMenuRestart)

	case StateConfirmName:
		switch label {
		case LabelConfirm:
			e.setField(s, FieldName, s.Employee.DisplayName)
			e.setField(s, FieldID, s.Employee.ID)
			if s.Employee.Phone != "" {
				return e.enter(ctx, s, StateConfirmPhoneOnFile, "")
			}
			return e.enter(ctx, s, StateProvideNewPhone, promptNoPhoneOnFile)
		case LabelAgent:
			return e.transfer(ctx, s, promptTransferToAgent)
		}
		// Wrong person: clear the binding and ask for the ID again.
		s.Employee = nil
		return e.enter(ctx, s, StateProvideEmployeeID, promptWrongEmployee)

	case StateConfirmPhoneOnFile:
		switch label {
		case LabelConfirm:
			e.setField(s, FieldPhone, s.Employee.Phone)
			return e.enterEmailStep(ctx, s)
		case LabelAgent:
			return e.transfer(ctx, s, promptTransferToAgent)
		}
		return e.enter(ctx, s, StateProvideNewPhone, "")

	case StateConfirmNewPhone:
		switch label {
		case LabelConfirm:
			e.setField(s, FieldPhone, s.PendingPhone)
			s.PendingPhone = ""
			return e.enterEmailStep(ctx, s)
		case LabelAgent:
			return e.transfer(ctx, s, promptTransferToAgent)
		}
		s.PendingPhone = ""
		return e.enter(ctx, s, StateProvideNewPhone, promptRetryNewPhone)

	case StateConfirmEmailOnFile:
		switch label {
		case LabelConfirm:
			e.setField(s, FieldEmail, s.Employee.Email)
			return e.enter(ctx, s, StateConfirmWorkLocation, "")
		case LabelAgent:
			return e.transfer(ctx, s, promptTransferToAgent)
		}
		return e.enter(ctx, s, StateProvideNewEmail, "")

	case StateConfirmWorkLocation:
		e.setField(s, FieldWorkMode, label)
		return e.enter(ctx, s, StateConfirmContactMethod, "")

	case StateConfirmContactMethod:
		e.setField(s, FieldContactMethod, label)
		return e.enter(ctx, s, StateProvideWorkAddress, "")

	case StateConfirmUrgency:
		e.setField(s, FieldUrgency, label)
		return e.enter(ctx, s, StateCaptureIssue, "")

	case StateConfirmAdditionalRequest:
		if label == LabelYes {
			s.Draft = NewTicketDraft()
			s.Employee = nil
			s.PendingPhone = ""
			return e.enter(ctx, s, StateMainMenu, "")
		}
		return e.goodbye(ctx, s)
	}
	return e.fatal(ctx, s)
}

// handleSpeech applies a speech recognition result to the current state.
func (e *Engine) handleSpeech(ctx context.Context, s *Session, text string) error {
	switch s.State {
	case StateProvideEmployeeID:
		return e.lookupEmployee(ctx, s, NormalizeIdentifier(text))

	case StateProvideNewPhone:
		num := NormalizePhone(text)
		if num == "" {
			return e.retryOrEscalate(ctx, s, promptInvalidAudio)
		}
		s.PendingPhone = num
		return e.enter(ctx, s, StateConfirmNewPhone, confirmNewPhonePrompt(num))

	case StateProvideNewEmail:
		e.setField(s, FieldEmail, NormalizeFreeText(text))
		return e.enter(ctx, s, StateConfirmWorkLocation, "")

	case StateProvideWorkAddress:
		e.setField(s, FieldWorkAddress, NormalizeFreeText(text))
		return e.enter(ctx, s, StateConfirmUrgency, "")

	case StateCaptureIssue:
		e.setField(s, FieldIssue, NormalizeFreeText(text))
		e.dispatchTicket(s)
		return e.enter(ctx, s, StateConfirmAdditionalRequest, "")
	}
	return e.fatal(ctx, s)
}

// handleDtmf applies a keypad tone capture to the current state.
func (e *Engine) handleDtmf(ctx context.Context, s *Session, tones []string) error {
	switch s.State {
	case StateProvideEmployeeID:
		digits, err := TonesToDigits(tones)
		if errors.Is(err, ErrControlTone) {
			return e.retryOrEscalate(ctx, s, promptBadIDCharacter)
		}
		if err != nil {
			return e.retryOrEscalate(ctx, s, promptInvalidAudio)
		}
		if len(digits) != employeeIDDigits {
			return e.retryOrEscalate(ctx, s, promptBadIDLength)
		}
		// Keypads can't enter the "e" prefix; directory IDs carry it.
		return e.lookupEmployee(ctx, s, "e"+digits)

	case StateProvideNewPhone:
		digits, err := TonesToDigits(tones)
		if err != nil {
			return e.retryOrEscalate(ctx, s, promptBadPhoneCharacter)
		}
		s.PendingPhone = digits
		return e.enter(ctx, s, StateConfirmNewPhone, confirmNewPhonePrompt(digits))
	}
	return e.fatal(ctx, s)
}

// lookupEmployee resolves a normalized ID against the directory and either
// binds the employee or re-prompts.
func (e *Engine) lookupEmployee(ctx context.Context, s *Session, id string) error {
	emp, err := e.dir.ByID(id)
	if errors.Is(err, directory.ErrEmployeeNotFound) {
		fmt.Fprintf(e.out, "ivr: call %s: no employee %q\n", s.CallID, id)
		return e.retryOrEscalate(ctx, s, promptEmployeeNotFound)
	}
	if err != nil {
		log.Printf("ivr: call %s: directory lookup: %v", s.CallID, err)
		return e.retryOrEscalate(ctx, s, promptEmployeeNotFound)
	}
	s.Employee = emp
	return e.enter(ctx, s, StateConfirmName, confirmNamePrompt(emp.FirstName))
}

// handleRecognizeFailed counts the failure and either re-prompts or escalates.
func (e *Engine) handleRecognizeFailed(ctx context.Context, s *Session, ev Event) error {
	fmt.Fprintf(e.out, "ivr: call %s: recognition failed in state %s (code=%d, %s)\n",
		s.CallID, s.State, ev.ReasonCode, ev.ReasonMessage)
	return e.retryOrEscalate(ctx, s, retryPromptFor(ev.ReasonCode))
}

// retryOrEscalate increments the retry counter, re-issuing the current
// state's recognition with the given text while within bounds and escalating
// to a live agent once exceeded.
func (e *Engine) retryOrEscalate(ctx context.Context, s *Session, text string) error {
	s.Retries++
	if s.Retries > e.maxRetries {
		return e.transfer(ctx, s, promptEscalation)
	}
	spec, ok := stateSpecs[s.State]
	if !ok {
		return e.fatal(ctx, s)
	}
	return e.recognize(ctx, s, spec, text)
}

// enterEmailStep continues past the phone step: confirm the directory email
// when one is on file, otherwise collect a new one.
func (e *Engine) enterEmailStep(ctx context.Context, s *Session) error {
	if s.Employee != nil && s.Employee.Email != "" {
		return e.enter(ctx, s, StateConfirmEmailOnFile, "")
	}
	return e.enter(ctx, s, StateProvideNewEmail, promptNoEmailOnFile)
}

// enter transitions to next, resets the retry counter, and issues the
// state's recognition. An empty text uses the state's standard prompt;
// confirmation states with dynamic prompts pass the built text.
func (e *Engine) enter(ctx context.Context, s *Session, next State, text string) error {
	spec, ok := stateSpecs[next]
	if !ok {
		return fmt.Errorf("ivr: call %s: enter unknown state %q", s.CallID, next)
	}
	s.State = next
	s.Retries = 0
	if text == "" {
		text = spec.Prompt
	}
	return e.recognize(ctx, s, spec, text)
}

// recognize issues the one recognition directive for the current state.
func (e *Engine) recognize(ctx context.Context, s *Session, spec stateSpec, text string) error {
	fmt.Fprintf(e.out, "ivr: call %s [%s] bot: %q\n", s.CallID, s.State, text)
	req := RecognizeRequest{
		Text:     text,
		Context:  string(s.State),
		Mode:     spec.Mode,
		MaxTones: spec.MaxTones,
	}
	if spec.Choices != nil {
		req.Choices = spec.Choices()
	}
	if err := e.gw.Recognize(ctx, s.CallID, req); err != nil {
		return fmt.Errorf("ivr: call %s: recognize: %w", s.CallID, err)
	}
	return nil
}

// transfer moves the call onto the agent hand-off path: play the hand-off
// text, then transfer (or hang up) when the play completes.
func (e *Engine) transfer(ctx context.Context, s *Session, text string) error {
	s.State = StateTransferToAgent
	s.outcome = OutcomeEscalated
	return e.play(ctx, s, text)
}

// goodbye closes a completed call.
func (e *Engine) goodbye(ctx context.Context, s *Session) error {
	s.State = StateEnded
	s.outcome = OutcomeCompleted
	return e.play(ctx, s, promptGoodbye)
}

// fatal closes a call that hit an event/state combination with no rule.
// Every such path still yields exactly one directive.
func (e *Engine) fatal(ctx context.Context, s *Session) error {
	s.State = StateEnded
	s.outcome = OutcomeFailed
	return e.play(ctx, s, promptFatalError)
}

func (e *Engine) play(ctx context.Context, s *Session, text string) error {
	fmt.Fprintf(e.out, "ivr: call %s [%s] bot: %q\n", s.CallID, s.State, text)
	if err := e.gw.Play(ctx, s.CallID, PlayRequest{Text: text, Context: string(s.State)}); err != nil {
		return fmt.Errorf("ivr: call %s: play: %w", s.CallID, err)
	}
	return nil
}

// handlePlayCompleted finishes terminal states once their closing prompt has
// been spoken. Plays only happen terminally; anything else has no rule.
func (e *Engine) handlePlayCompleted(ctx context.Context, s *Session) error {
	switch s.State {
	case StateEnded:
		return e.release(ctx, s, s.outcome)
	case StateTransferToAgent:
		e.record(s, OutcomeEscalated)
		e.registry.Destroy(s.CallID)
		if e.agentNumber != "" {
			if err := e.gw.Transfer(ctx, s.CallID, e.agentNumber); err != nil {
				return fmt.Errorf("ivr: call %s: transfer: %w", s.CallID, err)
			}
			return nil
		}
		return e.hangup(ctx, s.CallID)
	}
	fmt.Fprintf(e.out, "ivr: call %s: unexpected play completion in state %s\n", s.CallID, s.State)
	return e.fatal(ctx, s)
}

// release records the outcome, destroys the session, and hangs up. Safe to
// reach multiple times: the registry drop makes later events no-ops.
func (e *Engine) release(ctx context.Context, s *Session, outcome CallOutcome) error {
	e.record(s, outcome)
	e.registry.Destroy(s.CallID)
	return e.hangup(ctx, s.CallID)
}

func (e *Engine) hangup(ctx context.Context, callID string) error {
	if err := e.gw.Hangup(ctx, callID); err != nil {
		return fmt.Errorf("ivr: call %s: hangup: %w", callID, err)
	}
	return nil
}

func (e *Engine) record(s *Session, outcome CallOutcome) {
	if e.recorder == nil {
		return
	}
	e.recorder.RecordCall(s.CallID, outcome, s.TicketsFiled)
}

// setField commits a draft field. Reassignment is a dialog logic error: it is
// logged and the original value kept.
func (e *Engine) setField(s *Session, f Field, v string) {
	if err := s.Draft.Set(f, v); err != nil {
		log.Printf("ivr: call %s: %v", s.CallID, err)
	}
}

// dispatchTicket finalizes the draft and hands it off in the background with
// a bounded deadline. Dispatch failures never stall the conversation.
func (e *Engine) dispatchTicket(s *Session) {
	ticket, err := s.Draft.Finalize()
	if err != nil {
		log.Printf("ivr: call %s: finalize ticket: %v", s.CallID, err)
		return
	}
	s.TicketsFiled++
	callID := s.CallID
	ticket.CallID = callID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.dispatchTimeout)
		defer cancel()
		if err := e.dispatcher.Dispatch(ctx, ticket); err != nil {
			log.Printf("ivr: call %s: dispatch ticket: %v", callID, err)
			return
		}
		// e.out is reserved for the event path; this goroutine races any
		// in-flight event handler, so it logs through the standard logger.
		log.Printf("ivr: call %s: ticket dispatched for employee %s", callID, ticket.EmployeeID)
	}()
}

// SweepIdle destroys sessions idle longer than olderThan, recording them as
// abandoned and hanging up best-effort. Returns the number swept.
func (e *Engine) SweepIdle(ctx context.Context, olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)
	ids := e.registry.IdleSince(cutoff)
	for _, id := range ids {
		s, err := e.registry.Get(id)
		if err != nil {
			continue
		}
		s.lock()
		e.record(s, OutcomeAbandoned)
		e.registry.Destroy(id)
		s.unlock()
		fmt.Fprintf(e.out, "ivr: call %s: swept after idling\n", id)
		if err := e.gw.Hangup(ctx, id); err != nil {
			log.Printf("ivr: call %s: sweep hangup: %v", id, err)
		}
	}
	return len(ids)
}
