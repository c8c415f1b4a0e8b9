package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
)

const defaultHeartbeat = 30 * time.Second

// SSEHandler streams company events as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration

	mu      sync.Mutex
	clients map[string]int // channel -> connected clients
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: defaultHeartbeat,
		clients:   make(map[string]int),
	}
}

// StreamCompanyUpdates handles GET /api/stream/companies/{id}
func (h *SSEHandler) StreamCompanyUpdates(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	if companyID == "" {
		respondWithError(w, http.StatusBadRequest, "Company id is required.")
		return
	}
	h.stream(w, r, providers.CompanyChannel(companyID), map[string]interface{}{"company_id": companyID})
}

// StreamAllUpdates handles GET /api/stream/companies
func (h *SSEHandler) StreamAllUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.CompanyEventsChannel, map[string]interface{}{})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported.")
		return
	}

	ctx := r.Context()
	events, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to channel")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.register(channel)
	defer h.unregister(channel)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	hello["timestamp"] = time.Now().UTC()
	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) register(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]++
	log.Debug().Str("channel", channel).Int("clients", h.clients[channel]).Msg("Stream client connected")
}

func (h *SSEHandler) unregister(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]--
	if h.clients[channel] <= 0 {
		delete(h.clients, channel)
	}
	log.Debug().Str("channel", channel).Msg("Stream client disconnected")
}

// sendEvent writes one SSE frame
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("Failed to marshal event data")
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

// ClientCount returns the number of connected stream clients
func (h *SSEHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}

// Stats handles GET /api/stream/stats
func (h *SSEHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"connected_clients": h.ClientCount()})
}
