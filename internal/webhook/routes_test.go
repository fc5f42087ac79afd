package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/helpline/internal/ivr"
)

type mockEngine struct {
	events []ivr.Event
	err    error
}

func (m *mockEngine) HandleEvent(ctx context.Context, ev ivr.Event) error {
	m.events = append(m.events, ev)
	return m.err
}

func (m *mockEngine) ActiveCalls() int { return len(m.events) }

type mockAnswerer struct {
	contexts []string
	err      error
}

func (m *mockAnswerer) Answer(ctx context.Context, incomingCallContext string) (string, error) {
	m.contexts = append(m.contexts, incomingCallContext)
	return "conn-1", m.err
}

type mockCaller struct {
	targets []string
	err     error
}

func (m *mockCaller) CreateCall(ctx context.Context, target string) (string, error) {
	m.targets = append(m.targets, target)
	return "conn-2", m.err
}

type mockTicketReader struct {
	rows []TicketView
	err  error
}

func (m *mockTicketReader) RecentTickets(limit int) ([]TicketView, error) {
	return m.rows, m.err
}

func setupRouter(t *testing.T) (*gin.Engine, *mockEngine, *mockAnswerer, *mockTicketReader) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := &mockEngine{}
	answerer := &mockAnswerer{}
	tickets := &mockTicketReader{}
	router := NewRouter(StartOpts{Engine: engine, Answerer: answerer, Tickets: tickets})
	return router, engine, answerer, tickets
}

func TestHealth(t *testing.T) {
	router, _, _, _ := setupRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestIncoming_SubscriptionValidation(t *testing.T) {
	router, _, answerer, _ := setupRouter(t)
	body := `[{"eventType":"Microsoft.EventGrid.SubscriptionValidationEvent","data":{"validationCode":"code-9"}}]`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/incoming", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["validationResponse"] != "code-9" {
		t.Errorf("response = %v", resp)
	}
	if len(answerer.contexts) != 0 {
		t.Error("validation event triggered an answer")
	}
}

func TestIncoming_AnswersCall(t *testing.T) {
	router, _, answerer, _ := setupRouter(t)
	body := `[{"eventType":"Microsoft.Communication.IncomingCall","data":{"incomingCallContext":"opaque-ctx"}}]`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/incoming", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(answerer.contexts) != 1 || answerer.contexts[0] != "opaque-ctx" {
		t.Errorf("answered = %v", answerer.contexts)
	}
}

func TestIncoming_AnswerFailureStillAcks(t *testing.T) {
	router, _, answerer, _ := setupRouter(t)
	answerer.err = errors.New("service busy")
	body := `[{"eventType":"Microsoft.Communication.IncomingCall","data":{"incomingCallContext":"ctx"}}]`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/incoming", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, answer failures must still ack", w.Code)
	}
}

func TestCallbacks_FeedsEngine(t *testing.T) {
	router, engine, _, _ := setupRouter(t)
	body := `[
		{"type":"Microsoft.Communication.CallConnected","data":{"callConnectionId":"c1"}},
		{"type":"Microsoft.Communication.RecognizeCompleted","data":{
			"callConnectionId":"c1","operationContext":"main_menu",
			"recognitionType":"choices","choiceResult":{"label":"Ticket"}}}
	]`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/callbacks", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(engine.events) != 2 {
		t.Fatalf("events = %d, want 2", len(engine.events))
	}
	if engine.events[0].Type != ivr.EventCallConnected || engine.events[1].Label != "Ticket" {
		t.Errorf("events = %+v", engine.events)
	}
}

func TestCallbacks_EngineErrorStillAcks(t *testing.T) {
	router, engine, _, _ := setupRouter(t)
	engine.err = errors.New("boom")
	body := `[{"type":"Microsoft.Communication.CallConnected","data":{"callConnectionId":"c1"}}]`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/callbacks", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, engine errors must still ack", w.Code)
	}
}

func TestCallbacks_BadPayloadRejected(t *testing.T) {
	router, _, _, _ := setupRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/callbacks", strings.NewReader("not json")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestTickets(t *testing.T) {
	router, _, _, tickets := setupRouter(t)
	tickets.rows = []TicketView{{ID: 1, EmployeeID: "e672834", Urgency: "High", Status: "dispatched"}}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tickets", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "e672834") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTickets_NoStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(StartOpts{Engine: &mockEngine{}, Answerer: &mockAnswerer{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tickets", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOutbound_CreatesCall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	caller := &mockCaller{}
	router := NewRouter(StartOpts{Engine: &mockEngine{}, Answerer: &mockAnswerer{}, Caller: caller})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/calls",
		strings.NewReader(`{"target":"+12135550142"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CallID != "conn-2" {
		t.Errorf("call_id = %q", resp.CallID)
	}
	if len(caller.targets) != 1 || caller.targets[0] != "+12135550142" {
		t.Errorf("targets = %v", caller.targets)
	}
}

func TestOutbound_MissingTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(StartOpts{Engine: &mockEngine{}, Answerer: &mockAnswerer{}, Caller: &mockCaller{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/calls", strings.NewReader(`{}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOutbound_CallerErrorSurfaces(t *testing.T) {
	gin.SetMode(gin.TestMode)
	caller := &mockCaller{err: errors.New("acs unavailable")}
	router := NewRouter(StartOpts{Engine: &mockEngine{}, Answerer: &mockAnswerer{}, Caller: caller})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/calls",
		strings.NewReader(`{"target":"+12135550142"}`)))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOutbound_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(StartOpts{Engine: &mockEngine{}, Answerer: &mockAnswerer{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/calls",
		strings.NewReader(`{"target":"+12135550142"}`)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
