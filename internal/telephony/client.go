// Package telephony implements the call gateway against the Azure
// Communication Services call automation REST API. It answers incoming
// calls and issues play, recognize, transfer, and hangup actions; the
// service reports results back to the webhook as callback events.
package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zulandar/helpline/internal/ivr"
)

const apiVersion = "2023-10-15"

// recognizer timeouts, in seconds, matching the dialog's pacing.
const (
	initialSilenceTimeout = 10
	interToneTimeout      = 5
	speechEndTimeout      = 2
)

// Client talks to one ACS resource. It implements ivr.Gateway.
type Client struct {
	endpoint    *url.URL
	accessKey   string
	callbackURI string
	cognitive   string
	voice       string
	source      string
	http        *http.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	Endpoint          string // ACS resource endpoint, e.g. https://res.communication.azure.com
	AccessKey         string // base64 resource access key used for request signing
	CallbackURI       string // absolute URI callback events are delivered to
	CognitiveEndpoint string // cognitive services endpoint backing speech recognition
	Voice             string // TTS voice name
	SourceNumber      string // caller ID presented on outbound calls; optional
	HTTPClient        *http.Client
}

// NewClient creates a Client.
func NewClient(opts Opts) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("telephony: endpoint is required")
	}
	if opts.AccessKey == "" {
		return nil, fmt.Errorf("telephony: access key is required")
	}
	if opts.CallbackURI == "" {
		return nil, fmt.Errorf("telephony: callback URI is required")
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("telephony: parse endpoint: %w", err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	voice := opts.Voice
	if voice == "" {
		voice = "en-US-NancyNeural"
	}
	return &Client{
		endpoint:    u,
		accessKey:   opts.AccessKey,
		callbackURI: opts.CallbackURI,
		cognitive:   opts.CognitiveEndpoint,
		voice:       voice,
		source:      opts.SourceNumber,
		http:        hc,
	}, nil
}

// Answer accepts an incoming call using the opaque context from the incoming
// call notification. The returned ID identifies the call connection in every
// later action and callback.
func (c *Client) Answer(ctx context.Context, incomingCallContext string) (string, error) {
	body := map[string]any{
		"incomingCallContext": incomingCallContext,
		"callbackUri":         c.callbackURI,
	}
	if c.cognitive != "" {
		body["callIntelligenceOptions"] = map[string]any{
			"cognitiveServicesEndpoint": c.cognitive,
		}
	}
	var resp struct {
		CallConnectionID string `json:"callConnectionId"`
	}
	if err := c.do(ctx, http.MethodPost, "/calling/callConnections:answer", body, &resp); err != nil {
		return "", fmt.Errorf("telephony: answer call: %w", err)
	}
	if resp.CallConnectionID == "" {
		return "", fmt.Errorf("telephony: answer call: no call connection id in response")
	}
	return resp.CallConnectionID, nil
}

// CreateCall dials out to the target phone number, presenting the configured
// source number as caller ID. Once the callee picks up the call flows through
// the same callback events as an answered inbound call.
func (c *Client) CreateCall(ctx context.Context, target string) (string, error) {
	if c.source == "" {
		return "", fmt.Errorf("telephony: create call: no source number configured")
	}
	body := map[string]any{
		"targets": []any{
			map[string]any{
				"kind":        "phoneNumber",
				"phoneNumber": map[string]any{"value": target},
			},
		},
		"sourceCallerIdNumber": map[string]any{"value": c.source},
		"callbackUri":          c.callbackURI,
	}
	if c.cognitive != "" {
		body["callIntelligenceOptions"] = map[string]any{
			"cognitiveServicesEndpoint": c.cognitive,
		}
	}
	var resp struct {
		CallConnectionID string `json:"callConnectionId"`
	}
	if err := c.do(ctx, http.MethodPost, "/calling/callConnections", body, &resp); err != nil {
		return "", fmt.Errorf("telephony: create call to %s: %w", target, err)
	}
	if resp.CallConnectionID == "" {
		return "", fmt.Errorf("telephony: create call to %s: no call connection id in response", target)
	}
	return resp.CallConnectionID, nil
}

// Play speaks text to the caller. Completion arrives later as a callback.
func (c *Client) Play(ctx context.Context, callID string, req ivr.PlayRequest) error {
	body := map[string]any{
		"playSources":      []any{c.textSource(req.Text)},
		"playToAll":        true,
		"operationContext": req.Context,
	}
	path := fmt.Sprintf("/calling/callConnections/%s:play", url.PathEscape(callID))
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("telephony: play on call %s: %w", callID, err)
	}
	return nil
}

// Recognize plays the prompt and starts recognition in the requested
// modality. The result arrives later as a recognize callback tagged with the
// request's operation context.
func (c *Client) Recognize(ctx context.Context, callID string, req ivr.RecognizeRequest) error {
	body := map[string]any{
		"playPrompt":                     c.textSource(req.Text),
		"interruptPrompt":                true,
		"initialSilenceTimeoutInSeconds": initialSilenceTimeout,
		"operationContext":               req.Context,
	}
	switch req.Mode {
	case ivr.ChoiceOnly:
		body["recognizeInputType"] = "choices"
		body["choices"] = encodeChoices(req.Choices)
	case ivr.SpeechOnly:
		body["recognizeInputType"] = "speech"
		body["speechOptions"] = map[string]any{
			"endSilenceTimeoutInMs": speechEndTimeout * 1000,
		}
	case ivr.SpeechOrDtmf:
		body["recognizeInputType"] = "speechOrDtmf"
		body["speechOptions"] = map[string]any{
			"endSilenceTimeoutInMs": speechEndTimeout * 1000,
		}
		body["dtmfOptions"] = map[string]any{
			"maxTonesToCollect":         req.MaxTones,
			"interToneTimeoutInSeconds": interToneTimeout,
		}
	default:
		return fmt.Errorf("telephony: recognize on call %s: unknown modality %q", callID, req.Mode)
	}
	path := fmt.Sprintf("/calling/callConnections/%s:recognize", url.PathEscape(callID))
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("telephony: recognize on call %s: %w", callID, err)
	}
	return nil
}

// Transfer hands the call off to the target phone number.
func (c *Client) Transfer(ctx context.Context, callID, target string) error {
	body := map[string]any{
		"targetParticipant": map[string]any{
			"kind":        "phoneNumber",
			"phoneNumber": map[string]any{"value": target},
		},
	}
	path := fmt.Sprintf("/calling/callConnections/%s:transferToParticipant", url.PathEscape(callID))
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("telephony: transfer call %s: %w", callID, err)
	}
	return nil
}

// Hangup terminates the call for everyone.
func (c *Client) Hangup(ctx context.Context, callID string) error {
	path := fmt.Sprintf("/calling/callConnections/%s", url.PathEscape(callID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("telephony: hang up call %s: %w", callID, err)
	}
	return nil
}

// textSource builds a TTS play source.
func (c *Client) textSource(text string) map[string]any {
	return map[string]any{
		"kind": "text",
		"text": map[string]any{
			"text":      text,
			"voiceName": c.voice,
		},
	}
}

// encodeChoices converts the dialog's choice sets to the recognizer's wire
// shape. Listed tones use the service's tone names ("one", "zero", ...).
func encodeChoices(choices []ivr.Choice) []any {
	out := make([]any, 0, len(choices))
	for _, ch := range choices {
		out = append(out, map[string]any{
			"label":   ch.Label,
			"phrases": ch.Phrases,
			"tone":    ch.Tone,
		})
	}
	return out
}

// do signs and executes one API request, decoding the JSON response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	u := *c.endpoint
	u.Path = path
	u.RawQuery = "api-version=" + apiVersion

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := SignRequest(req, c.accessKey, payload); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
