package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/athena3d/athena-backend/events"
)

// EventsHandler expõe o histórico de eventos para indexadores externos.
type EventsHandler struct {
	Bus *events.Bus
}

func NewEventsHandler(bus *events.Bus) *EventsHandler {
	return &EventsHandler{Bus: bus}
}

// GetEvents retorna os eventos com sequência maior que ?since (0 = todos).
// GET /events?since=N
func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "Parâmetro since inválido", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Bus.Since(since))
}
