package webhook

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/helpline/internal/telephony"
)

const maxBodyBytes = 1 << 20

// NewRouter builds the Gin router for the webhook endpoints.
func NewRouter(opts StartOpts) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handleHealth(opts.Engine))
	router.POST("/api/incoming", handleIncoming(opts.Answerer))
	router.POST("/api/callbacks", handleCallbacks(opts.Engine))
	router.POST("/api/calls", handleOutbound(opts.Caller))
	router.GET("/api/tickets", handleTickets(opts.Tickets))

	return router
}

func handleHealth(engine EventHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"active_calls": engine.ActiveCalls(),
		})
	}
}

// handleIncoming answers the Event Grid subscription handshake and ringing
// calls. The answer call is synchronous; the dialog itself starts when the
// CallConnected callback arrives.
func handleIncoming(answerer Answerer) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
			return
		}
		events, err := telephony.ParseGridEvents(body)
		if err != nil {
			log.Printf("webhook: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad event grid payload"})
			return
		}

		for _, ev := range events {
			switch ev.EventType {
			case telephony.EventTypeSubscriptionValidation:
				data, err := ev.ValidationData()
				if err != nil {
					log.Printf("webhook: %v", err)
					c.JSON(http.StatusBadRequest, gin.H{"error": "bad validation event"})
					return
				}
				c.JSON(http.StatusOK, gin.H{"validationResponse": data.ValidationCode})
				return

			case telephony.EventTypeIncomingCall:
				call, err := ev.IncomingCall()
				if err != nil {
					log.Printf("webhook: %v", err)
					continue
				}
				id, err := answerer.Answer(c.Request.Context(), call.IncomingCallContext)
				if err != nil {
					log.Printf("webhook: answer incoming call: %v", err)
					continue
				}
				log.Printf("webhook: answered call %s from %s", id, call.From.RawID)
			}
		}
		c.Status(http.StatusOK)
	}
}

// handleCallbacks feeds call automation events to the dialog engine. The
// gateway retries on non-2xx, so handler failures still ack with 200 after
// being logged; only undecodable payloads are rejected.
func handleCallbacks(engine EventHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
			return
		}
		events, err := telephony.ParseEvents(body)
		if err != nil {
			log.Printf("webhook: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad callback payload"})
			return
		}
		for _, ev := range events {
			if err := engine.HandleEvent(c.Request.Context(), ev); err != nil {
				log.Printf("webhook: handle %s for call %s: %v", ev.Type, ev.CallID, err)
			}
		}
		c.Status(http.StatusOK)
	}
}

// handleOutbound dials the requested number. The dialog starts when the
// CallConnected callback for the new connection arrives.
func handleOutbound(caller Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "outbound calling not configured"})
			return
		}
		var req struct {
			Target string `json:"target"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Target == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target phone number is required"})
			return
		}
		id, err := caller.CreateCall(c.Request.Context(), req.Target)
		if err != nil {
			log.Printf("webhook: create call to %s: %v", req.Target, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "create call"})
			return
		}
		log.Printf("webhook: created call %s to %s", id, req.Target)
		c.JSON(http.StatusOK, gin.H{"call_id": id})
	}
}

func handleTickets(tickets TicketReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tickets == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket store not configured"})
			return
		}
		rows, err := tickets.RecentTickets(50)
		if err != nil {
			log.Printf("webhook: list tickets: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list tickets"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tickets": rows})
	}
}
