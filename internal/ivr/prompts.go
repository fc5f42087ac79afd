package ivr

// Prompt texts played to the caller. Confirmation prompts that embed dynamic
// values (the employee's first name, a captured phone number) are built in
// the engine.
const (
	promptMainMenu = "Hello! Welcome to the help desk phone line. How can I help you today? " +
		"Please say 'file ticket' if you would like to file a service ticket, or say 'agent' " +
		"to be connected to a live agent. Alternatively, you can press 'one' to file a ticket, " +
		"or press 'zero' to speak to an agent."

	promptMainMenuRestart = "Hmm. Okay. Let's start again. How can I help you today? " +
		"Please say 'file ticket' if you would like to file a service ticket, or say 'agent' " +
		"to be connected to a live agent. Alternatively, you can press 'one' to file a ticket, " +
		"or press 'zero' to speak to an agent."

	promptConfirmTicketIntent   = "Got it. You'd like to file a ticket. Is that correct?"
	promptConfirmTransferIntent = "Got it. You'd like to be transferred to a live agent. Is that correct?"

	promptProvideEmployeeID = "Great. Can you provide your employee ID number?"

	promptEmployeeNotFound = "I couldn't find an employee under that I.D. number. Let's try one more time. " +
		"Can you please say or enter your employee ID number?"

	promptWrongEmployee = "Ah. It looks like you may have provided another employee's ID number. " +
		"Let's try again. Can you please say your employee ID number?"

	promptBadIDLength = "Employee ID numbers should have six digits. Let's try again. " +
		"Can you please say or enter your employee ID number?"

	promptBadIDCharacter = "You entered an invalid character. Employee ID numbers should consist of " +
		"six numerical digits. Let's try again. Can you please say or enter your employee ID number?"

	promptConfirmPhoneOnFile = "Okay. I have a phone number here for you pulled from the employee directory. " +
		"Is this still the best way to contact you?"

	promptNoPhoneOnFile = "Okay. The employee directory does not have a phone number listed for you. " +
		"Can you say your phone number, or enter it on the dial pad?"

	promptProvideNewPhone      = "Okay. What is the best phone number for you?"
	promptRetryNewPhone        = "Hmm. Okay. Let's try that again. What is the best phone number for you?"
	promptBadPhoneCharacter    = "You entered an invalid character. Let's try that again. What is the best phone number for you?"
	promptConfirmEmailOnFile   = "Okay. I also have your email address on file from the directory. Is this still the best email to reach you at?"
	promptNoEmailOnFile        = "Okay. The employee directory does not have an email address listed for you. Can you please provide your email address now?"
	promptProvideNewEmail      = "Okay. What is the best email address for you?"

	promptConfirmWorkLocation = "Okay. Now, where are you working from? Say 'office' if you are working from an " +
		"on site location, or say 'telework' if you are working from a remote location. " +
		"Or, press 'one' for in-office, or 'two' for telework."

	promptConfirmContactMethod = "Okay. Now, what is the best way to contact you? Say 'phone' if you would like " +
		"to be contacted via phone call, or say 'email' if you would like to be contacted via email. " +
		"Or, press 'one' for phone, or press 'two' for email."

	promptProvideWorkAddress = "Okay. Almost done. Now, what is the physical address where the issue is occurring?"

	promptConfirmUrgency = "Okay. Lastly, what is the urgency of this issue? Please say 'low', 'medium', or 'high', " +
		"or press 'one' for low, press 'two' for medium, or press 'three' for high. Please note, when filing a " +
		"high urgency ticket, the issue will be escalated in the ticket queue. Please choose accordingly."

	promptCaptureIssue = "Great. Now, can you clearly and succinctly describe the issue that you are dealing with today?"

	promptConfirmAdditionalRequest = "I understand. Sorry to hear that you're dealing with that today. " +
		"I've logged this issue successfully. Someone should be reaching out to you shortly via your provided " +
		"best contact method. We look forward to getting this issue resolved for you. Now, is there anything " +
		"else I can assist you with?"

	promptTransferToAgent = "Okay. Please hold while I connect you to a live agent."

	promptEscalation = "I apologize. It looks like we are having an issue understanding each other. " +
		"Let me connect you to a live agent. Goodbye for now!"

	promptGoodbye = "Goodbye for now!"

	promptFatalError = "I apologize, but there was a systematic error in the call. Please call again."

	// Retry prompts, selected on the recognition failure reason.
	promptQueryTimeout = "I'm sorry I didn't receive a response, please try again."
	promptInvalidAudio = "I'm sorry, I didn't understand your response, please try again."
)

// confirmNamePrompt asks the caller to confirm the directory match.
func confirmNamePrompt(firstName string) string {
	return "Great. Give me a moment while I look up your information... Is your name " + firstName + "?"
}

// confirmNewPhonePrompt echoes a captured phone number back for confirmation.
func confirmNewPhonePrompt(number string) string {
	return "You said " + number + ". Is this correct?"
}

// retryPromptFor picks the re-prompt text for a recognition failure.
func retryPromptFor(reasonCode int) string {
	if reasonCode == reasonSilenceTimeout {
		return promptQueryTimeout
	}
	return promptInvalidAudio
}
