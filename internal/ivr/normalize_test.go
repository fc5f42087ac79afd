package ivr

import (
	"errors"
	"testing"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"E six seven two eight three four.", "e672834"},
		{"e672834", "e672834"},
		{"E 672834", "e672834"},
		{"e six seven two, eight three four", "e672834"},
		{"E-118203", "e118203"},
		{"  e550019  ", "e550019"},
	}
	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.in); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"two one three five five five zero one four two", "2135550142"},
		{"213 555 0142", "2135550142"},
		{"(213) 555-0142", "2135550142"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTonesToDigits(t *testing.T) {
	got, err := TonesToDigits([]string{"six", "seven", "two", "eight", "three", "four"})
	if err != nil {
		t.Fatalf("TonesToDigits: %v", err)
	}
	if got != "672834" {
		t.Errorf("digits = %q", got)
	}
}

func TestTonesToDigits_LiteralDigits(t *testing.T) {
	got, err := TonesToDigits([]string{"6", "7", "2"})
	if err != nil {
		t.Fatalf("TonesToDigits: %v", err)
	}
	if got != "672" {
		t.Errorf("digits = %q", got)
	}
}

func TestTonesToDigits_ControlTones(t *testing.T) {
	for _, tone := range []string{"pound", "asterisk", "star"} {
		_, err := TonesToDigits([]string{"one", tone, "two"})
		if !errors.Is(err, ErrControlTone) {
			t.Errorf("tone %q: err = %v, want ErrControlTone", tone, err)
		}
	}
}

func TestTonesToDigits_UnknownTone(t *testing.T) {
	_, err := TonesToDigits([]string{"one", "flash"})
	if err == nil {
		t.Fatal("expected error for unknown tone")
	}
	if errors.Is(err, ErrControlTone) {
		t.Error("unknown tone misreported as a control tone")
	}
}
