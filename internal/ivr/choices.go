package ivr

// Choice is one option in a constrained recognition request: a stable label,
// the spoken phrases that match it, and the keypad tone bound to it.
type Choice struct {
	Label   string
	Phrases []string
	Tone    string
}

// Labels shared across choice sets.
const (
	LabelTicket   = "Ticket"
	LabelAgent    = "Agent"
	LabelConfirm  = "Confirm"
	LabelCancel   = "No"
	LabelYes      = "Yes"
	LabelNo       = "No"
	LabelOffice   = "Office"
	LabelTelework = "Telework"
	LabelPhone    = "Phone"
	LabelEmail    = "Email"
	LabelLow      = "Low"
	LabelMedium   = "Medium"
	LabelHigh     = "High"
)

// MenuChoices are the main menu options: file a ticket or reach a live agent.
func MenuChoices() []Choice {
	return []Choice{
		{Label: LabelTicket, Phrases: []string{"File ticket"}, Tone: "one"},
		{Label: LabelAgent, Phrases: []string{"Speak to a person", "Speak to an agent", "Transfer to person", "Agent"}, Tone: "zero"},
	}
}

// ConfirmChoices are the yes/no options used by every confirmation question.
// The agent option is always available as an exit hatch.
func ConfirmChoices() []Choice {
	return []Choice{
		{Label: LabelConfirm, Phrases: []string{"Yes", "First", "One"}, Tone: "one"},
		{Label: LabelCancel, Phrases: []string{"No", "Second", "Two"}, Tone: "two"},
		{Label: LabelAgent, Phrases: []string{"Speak to a person", "Speak to an agent", "Transfer to person"}, Tone: "zero"},
	}
}

// UrgencyChoices select the ticket urgency tier.
func UrgencyChoices() []Choice {
	return []Choice{
		{Label: LabelLow, Phrases: []string{"Low", "First", "One"}, Tone: "one"},
		{Label: LabelMedium, Phrases: []string{"Medium", "Second", "Two"}, Tone: "two"},
		{Label: LabelHigh, Phrases: []string{"High", "Third", "Three"}, Tone: "three"},
	}
}

// WorkModeChoices select where the caller works from.
func WorkModeChoices() []Choice {
	return []Choice{
		{Label: LabelOffice, Phrases: []string{"Office", "In office", "On site", "On location", "First", "One"}, Tone: "one"},
		{Label: LabelTelework, Phrases: []string{"Telework", "Work from home", "Remote", "Second", "Two"}, Tone: "two"},
	}
}

// ContactMethodChoices select the caller's preferred contact method.
func ContactMethodChoices() []Choice {
	return []Choice{
		{Label: LabelPhone, Phrases: []string{"Phone", "Telephone", "Call", "By phone", "By telephone", "First", "One"}, Tone: "one"},
		{Label: LabelEmail, Phrases: []string{"Email", "By email", "Two"}, Tone: "two"},
	}
}

// AdditionalRequestChoices ask whether the caller wants to file another ticket.
func AdditionalRequestChoices() []Choice {
	return []Choice{
		{Label: LabelYes, Phrases: []string{"Yes", "Additional request", "Another ticket", "Additional ticket", "First", "One"}, Tone: "one"},
		{Label: LabelNo, Phrases: []string{"No", "End call", "Finish", "Hang up", "Second", "Two"}, Tone: "two"},
	}
}
