package ivr

// State identifies where a call is in the intake dialog. The State value
// doubles as the operation context sent with each directive, so recognition
// results can be correlated back to the state that requested them.
type State string

const (
	StateMainMenu                 State = "main_menu"
	StateConfirmTicketIntent      State = "confirm_ticket_intent"
	StateConfirmTransferIntent    State = "confirm_transfer_intent"
	StateProvideEmployeeID        State = "provide_employee_id"
	StateConfirmName              State = "confirm_name"
	StateConfirmPhoneOnFile       State = "confirm_phone_on_file"
	StateProvideNewPhone          State = "provide_new_phone"
	StateConfirmNewPhone          State = "confirm_new_phone"
	StateConfirmEmailOnFile       State = "confirm_email_on_file"
	StateProvideNewEmail          State = "provide_new_email"
	StateConfirmWorkLocation      State = "confirm_work_location"
	StateConfirmContactMethod     State = "confirm_contact_method"
	StateProvideWorkAddress       State = "provide_work_address"
	StateConfirmUrgency           State = "confirm_urgency"
	StateCaptureIssue             State = "capture_issue"
	StateConfirmAdditionalRequest State = "confirm_additional_request"
	StateTransferToAgent          State = "transfer_to_agent"
	StateEnded                    State = "ended"
)

// Modality is the kind of input a state accepts.
type Modality string

const (
	ChoiceOnly   Modality = "choices"
	SpeechOnly   Modality = "speech"
	SpeechOrDtmf Modality = "speech_or_dtmf"
)

// stateSpec declares the prompt, input modality, and choice set for one
// dialog state. Prompt is the text played when the state is entered normally;
// retries substitute a failure-specific message.
type stateSpec struct {
	Prompt   string
	Mode     Modality
	Choices  func() []Choice
	MaxTones int // DTMF tone budget for SpeechOrDtmf states
}

// stateSpecs is the static per-state table. Terminal states (TransferToAgent,
// Ended) issue plays rather than recognitions and are not listed.
var stateSpecs = map[State]stateSpec{
	StateMainMenu:                 {Prompt: promptMainMenu, Mode: ChoiceOnly, Choices: MenuChoices},
	StateConfirmTicketIntent:      {Prompt: promptConfirmTicketIntent, Mode: ChoiceOnly, Choices: ConfirmChoices},
	StateConfirmTransferIntent:    {Prompt: promptConfirmTransferIntent, Mode: ChoiceOnly, Choices: ConfirmChoices},
	StateProvideEmployeeID:        {Prompt: promptProvideEmployeeID, Mode: SpeechOrDtmf, MaxTones: employeeIDDigits},
	StateConfirmName:              {Mode: ChoiceOnly, Choices: ConfirmChoices}, // prompt includes the employee's first name
	StateConfirmPhoneOnFile:       {Prompt: promptConfirmPhoneOnFile, Mode: ChoiceOnly, Choices: ConfirmChoices},
	StateProvideNewPhone:          {Prompt: promptProvideNewPhone, Mode: SpeechOrDtmf, MaxTones: phoneMaxTones},
	StateConfirmNewPhone:          {Mode: ChoiceOnly, Choices: ConfirmChoices}, // prompt echoes the captured number
	StateConfirmEmailOnFile:       {Prompt: promptConfirmEmailOnFile, Mode: ChoiceOnly, Choices: ConfirmChoices},
	StateProvideNewEmail:          {Prompt: promptProvideNewEmail, Mode: SpeechOnly},
	StateConfirmWorkLocation:      {Prompt: promptConfirmWorkLocation, Mode: ChoiceOnly, Choices: WorkModeChoices},
	StateConfirmContactMethod:     {Prompt: promptConfirmContactMethod, Mode: ChoiceOnly, Choices: ContactMethodChoices},
	StateProvideWorkAddress:       {Prompt: promptProvideWorkAddress, Mode: SpeechOnly},
	StateConfirmUrgency:           {Prompt: promptConfirmUrgency, Mode: ChoiceOnly, Choices: UrgencyChoices},
	StateCaptureIssue:             {Prompt: promptCaptureIssue, Mode: SpeechOnly},
	StateConfirmAdditionalRequest: {Prompt: promptConfirmAdditionalRequest, Mode: ChoiceOnly, Choices: AdditionalRequestChoices},
}

const (
	// employeeIDDigits is the exact digit count a DTMF-entered employee ID
	// must have.
	employeeIDDigits = 6
	// phoneMaxTones bounds DTMF phone number capture.
	phoneMaxTones = 10
)

// accepts reports whether an event kind satisfies the state's modality.
func (m Modality) accepts(t EventType) bool {
	switch m {
	case ChoiceOnly:
		return t == EventChoiceSelected
	case SpeechOnly:
		return t == EventSpeechRecognized
	case SpeechOrDtmf:
		return t == EventSpeechRecognized || t == EventDtmfCaptured
	}
	return false
}
