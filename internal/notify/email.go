// Package notify delivers finished tickets to the help desk: email is the
// primary channel, with optional Slack and Discord side channels for ops
// visibility, and a scheduled digest summarizing the day's traffic.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zulandar/helpline/internal/telephony"
)

const emailAPIVersion = "2023-03-31"

// Email send polling bounds. The original operator runbook allows an email
// send up to ninety seconds before it is declared failed.
const (
	pollInterval    = 5 * time.Second
	maxPollAttempts = 18
)

// EmailSender sends plain-text mail through the communication services email
// API and waits, bounded, for the send to finish.
type EmailSender struct {
	endpoint  string
	accessKey string
	sender    string
	http      *http.Client
}

// EmailOpts holds parameters for creating an EmailSender.
type EmailOpts struct {
	Endpoint   string // ACS resource endpoint
	AccessKey  string // base64 resource access key
	Sender     string // verified sender address
	HTTPClient *http.Client
}

// NewEmailSender creates an EmailSender.
func NewEmailSender(opts EmailOpts) (*EmailSender, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("notify: email endpoint is required")
	}
	if opts.AccessKey == "" {
		return nil, fmt.Errorf("notify: email access key is required")
	}
	if opts.Sender == "" {
		return nil, fmt.Errorf("notify: email sender address is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &EmailSender{
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		accessKey: opts.AccessKey,
		sender:    opts.Sender,
		http:      hc,
	}, nil
}

// Send mails one message and polls the operation until it succeeds, fails,
// or the attempt budget runs out.
func (e *EmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	payload := map[string]any{
		"senderAddress": e.sender,
		"recipients": map[string]any{
			"to": []any{map[string]any{"address": recipient}},
		},
		"content": map[string]any{
			"subject":   subject,
			"plainText": body,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode email: %w", err)
	}

	u := fmt.Sprintf("%s/emails:send?api-version=%s", e.endpoint, emailAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("notify: build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Operation-Id", uuid.NewString())
	if err := telephony.SignRequest(req, e.accessKey, data); err != nil {
		return fmt.Errorf("notify: sign email request: %w", err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notify: send email: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var accepted struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return fmt.Errorf("notify: decode email response: %w", err)
	}
	if accepted.ID == "" {
		return fmt.Errorf("notify: email accepted without an operation id")
	}
	return e.waitForDelivery(ctx, accepted.ID)
}

// waitForDelivery polls the send operation with a fixed interval and a hard
// attempt cap: a stuck operation must not hold a dispatch worker forever.
func (e *EmailSender) waitForDelivery(ctx context.Context, operationID string) error {
	u := fmt.Sprintf("%s/emails/operations/%s?api-version=%s", e.endpoint, operationID, emailAPIVersion)
	for attempt := 1; attempt <= maxPollAttempts; attempt++ {
		status, err := e.pollOnce(ctx, u)
		if err != nil {
			return err
		}
		switch strings.ToLower(status) {
		case "succeeded":
			return nil
		case "failed", "canceled":
			return fmt.Errorf("notify: email operation %s ended %s", operationID, status)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("notify: email operation %s: %w", operationID, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
	return fmt.Errorf("notify: email operation %s still running after %d polls", operationID, maxPollAttempts)
}

func (e *EmailSender) pollOnce(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("notify: build poll request: %w", err)
	}
	if err := telephony.SignRequest(req, e.accessKey, nil); err != nil {
		return "", fmt.Errorf("notify: sign poll request: %w", err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("notify: poll email operation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("notify: poll email operation: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	var op struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return "", fmt.Errorf("notify: decode poll response: %w", err)
	}
	return op.Status, nil
}
