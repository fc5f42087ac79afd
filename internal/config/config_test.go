package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalYAML = `
callback_host: https://helpline.example.com
acs:
  endpoint: https://res.communication.azure.com
  access_key: c2VjcmV0
email:
  sender: donotreply@example.com
  recipient: tickets@example.com
`

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ListenPort != 8080 {
		t.Errorf("ListenPort = %d, want 8080", cfg.ListenPort)
	}
	if cfg.Voice != "en-US-AvaMultilingualNeural" {
		t.Errorf("Voice = %q", cfg.Voice)
	}
	if cfg.Retry.MaxAttempts != 2 {
		t.Errorf("Retry.MaxAttempts = %d, want 2", cfg.Retry.MaxAttempts)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.Path != "helpline.db" {
		t.Errorf("DB defaults = %q %q", cfg.DB.Driver, cfg.DB.Path)
	}
	if cfg.Digest.Cron != "0 17 * * *" {
		t.Errorf("Digest.Cron = %q", cfg.Digest.Cron)
	}
	if got := cfg.CallbackURI(); got != "https://helpline.example.com/api/callbacks" {
		t.Errorf("CallbackURI = %q", got)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	yaml := minimalYAML + `
db:
  driver: mysql
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DB.Host != "127.0.0.1" || cfg.DB.Port != 3306 || cfg.DB.Database != "helpline" {
		t.Errorf("mysql defaults = %+v", cfg.DB)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing callback host", `
acs:
  endpoint: https://res.communication.azure.com
  access_key: k
email:
  sender: a@b.c
  recipient: d@e.f
`, "callback_host is required"},
		{"missing acs key", `
callback_host: https://h
acs:
  endpoint: https://res.communication.azure.com
email:
  sender: a@b.c
  recipient: d@e.f
`, "acs.access_key is required"},
		{"missing email recipient", `
callback_host: https://h
acs:
  endpoint: https://res.communication.azure.com
  access_key: k
email:
  sender: a@b.c
`, "email.recipient is required"},
		{"bad db driver", minimalYAML + `
db:
  driver: postgres
`, "db.driver"},
		{"slack channel required", minimalYAML + `
slack:
  bot_token: xoxb-test
`, "slack.channel_id is required"},
		{"discord channel required", minimalYAML + `
discord:
  bot_token: tok
`, "discord.channel_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("listen_port: [not a port"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helpline.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ACS.Endpoint != "https://res.communication.azure.com" {
		t.Errorf("ACS.Endpoint = %q", cfg.ACS.Endpoint)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
