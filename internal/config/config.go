// Package config provides YAML-based configuration loading for Helpline.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Helpline configuration, loaded from helpline.yaml.
type Config struct {
	ListenPort   int             `yaml:"listen_port"`
	CallbackHost string          `yaml:"callback_host"` // public base URL Azure posts callbacks to
	Voice        string          `yaml:"voice"`         // TTS voice name
	ACS          ACSConfig       `yaml:"acs"`
	Directory    DirectoryConfig `yaml:"directory"`
	Retry        RetryConfig     `yaml:"retry"`
	Session      SessionConfig   `yaml:"session"`
	DB           DBConfig        `yaml:"db"`
	Email        EmailConfig     `yaml:"email"`
	Slack        SlackConfig     `yaml:"slack"`
	Discord      DiscordConfig   `yaml:"discord"`
	Digest       DigestConfig    `yaml:"digest"`
}

// ACSConfig holds Azure Communication Services connection settings.
type ACSConfig struct {
	Endpoint          string `yaml:"endpoint"`   // https://<resource>.communication.azure.com
	AccessKey         string `yaml:"access_key"` // base64 HMAC key from the connection string
	PhoneNumber       string `yaml:"phone_number"`
	CognitiveEndpoint string `yaml:"cognitive_endpoint"`
	AgentNumber       string `yaml:"agent_number"` // transfer target for escalations; empty disables transfer
}

// DirectoryConfig points at the employee directory source.
type DirectoryConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// RetryConfig bounds consecutive recognition failures before escalation.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// SessionConfig controls the stale-session sweeper.
type SessionConfig struct {
	IdleTimeoutSec int `yaml:"idle_timeout_sec"`
	SweepEverySec  int `yaml:"sweep_every_sec"`
}

// DBConfig selects the ticket store backend. Driver is "sqlite" or "mysql".
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// EmailConfig holds the ticket email sender settings.
type EmailConfig struct {
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient"`
}

// SlackConfig holds the optional Slack ops sink settings.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds the optional Discord ops sink settings.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DigestConfig schedules the daily ticket digest (5-field cron expression).
type DigestConfig struct {
	Cron string `yaml:"cron"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.ListenPort == 0 {
		c.ListenPort = 8080
	}
	if c.Voice == "" {
		c.Voice = "en-US-AvaMultilingualNeural"
	}
	if c.Directory.CSVPath == "" {
		c.Directory.CSVPath = "employees.csv"
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 2
	}
	if c.Session.IdleTimeoutSec == 0 {
		c.Session.IdleTimeoutSec = 300
	}
	if c.Session.SweepEverySec == 0 {
		c.Session.SweepEverySec = 60
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Driver == "sqlite" && c.DB.Path == "" {
		c.DB.Path = "helpline.db"
	}
	if c.DB.Driver == "mysql" {
		if c.DB.Host == "" {
			c.DB.Host = "127.0.0.1"
		}
		if c.DB.Port == 0 {
			c.DB.Port = 3306
		}
		if c.DB.Database == "" {
			c.DB.Database = "helpline"
		}
	}
	if c.Digest.Cron == "" {
		c.Digest.Cron = "0 17 * * *"
	}
}

// IdleTimeout returns the session idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutSec) * time.Second
}

// SweepInterval returns the sweeper interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepEverySec) * time.Second
}

// CallbackURI returns the full URL the telephony service posts call events to.
func (c *Config) CallbackURI() string {
	return strings.TrimRight(c.CallbackHost, "/") + "/api/callbacks"
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.CallbackHost == "" {
		errs = append(errs, "callback_host is required")
	}
	if c.ACS.Endpoint == "" {
		errs = append(errs, "acs.endpoint is required")
	}
	if c.ACS.AccessKey == "" {
		errs = append(errs, "acs.access_key is required")
	}
	if c.Email.Sender == "" {
		errs = append(errs, "email.sender is required")
	}
	if c.Email.Recipient == "" {
		errs = append(errs, "email.recipient is required")
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "mysql" {
		errs = append(errs, fmt.Sprintf("db.driver %q is not supported (sqlite or mysql)", c.DB.Driver))
	}
	if c.Slack.BotToken != "" && c.Slack.ChannelID == "" {
		errs = append(errs, "slack.channel_id is required when slack.bot_token is set")
	}
	if c.Discord.BotToken != "" && c.Discord.ChannelID == "" {
		errs = append(errs, "discord.channel_id is required when discord.bot_token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
