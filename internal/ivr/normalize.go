package ivr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrControlTone is returned when a DTMF capture contains a control tone
// (pound or asterisk) in an identifier context.
var ErrControlTone = errors.New("ivr: control tone in identifier input")

// digitWords maps spoken/tone digit names to their digit characters.
var digitWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

// controlTones are keypad tones that are not digits.
var controlTones = map[string]bool{
	"pound":    true,
	"asterisk": true,
	"star":     true,
}

// NormalizeIdentifier canonicalizes a spoken identifier: lower-cases it,
// converts digit words to digits, and strips whitespace and punctuation.
// "E six seven two eight three four." becomes "e672834".
//
// TODO: spoken IDs deliberately skip the six-digit length check that DTMF
// entry enforces; confirm with product whether the two paths should be
// unified before tightening this.
func NormalizeIdentifier(text string) string {
	text = strings.ToLower(text)
	for _, p := range []string{".", ",", "-"} {
		text = strings.ReplaceAll(text, p, " ")
	}
	var b strings.Builder
	for _, tok := range strings.Fields(text) {
		if d, ok := digitWords[tok]; ok {
			b.WriteString(d)
		} else {
			b.WriteString(tok)
		}
	}
	return b.String()
}

// NormalizePhone canonicalizes a spoken phone number by stripping separators
// and converting digit words to digits.
func NormalizePhone(text string) string {
	text = strings.ToLower(text)
	for _, p := range []string{".", ",", "-", "(", ")"} {
		text = strings.ReplaceAll(text, p, " ")
	}
	var b strings.Builder
	for _, tok := range strings.Fields(text) {
		if d, ok := digitWords[tok]; ok {
			b.WriteString(d)
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

// NormalizeFreeText passes descriptive input (addresses, issue descriptions)
// through with only surrounding whitespace removed.
func NormalizeFreeText(text string) string {
	return strings.TrimSpace(text)
}

// TonesToDigits concatenates a DTMF tone sequence into a digit string. Any
// control tone (pound, asterisk) invalidates the whole capture: identifier
// contexts never partially accept.
func TonesToDigits(tones []string) (string, error) {
	var b strings.Builder
	for _, tone := range tones {
		t := strings.ToLower(strings.TrimSpace(tone))
		if controlTones[t] {
			return "", ErrControlTone
		}
		if d, ok := digitWords[t]; ok {
			b.WriteString(d)
			continue
		}
		// Some gateways report the digit itself rather than its name.
		if len(t) == 1 && t[0] >= '0' && t[0] <= '9' {
			b.WriteString(t)
			continue
		}
		return "", fmt.Errorf("ivr: unrecognized tone %q", tone)
	}
	return b.String(), nil
}
