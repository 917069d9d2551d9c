package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cartshare/internal/domain"
	"cartshare/pkg/logger"
)

// DebugHandler serves the internal admin listener: registry stats and
// per-room member counts. Not reachable from the public port.
type DebugHandler struct {
	registry domain.ConnectionRegistry
	log      logger.Logger
}

func NewDebugHandler(registry domain.ConnectionRegistry, log logger.Logger) *DebugHandler {
	return &DebugHandler{registry: registry, log: log}
}

// Router mounts the debug routes on a gorilla mux router.
func (h *DebugHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/debug/stats", h.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/debug/rooms/{kind}/{id}", h.handleRoom).Methods(http.MethodGet)
	return r
}

func (h *DebugHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Stats())
}

func (h *DebugHandler) handleRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var kind domain.RoomKind
	switch vars["kind"] {
	case "group":
		kind = domain.GroupRoom
	case "list":
		kind = domain.ListRoom
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be group or list"})
		return
	}

	room := domain.Room{Kind: kind, ID: vars["id"]}
	members := h.registry.MembersOf(room)
	ids := make([]string, 0, len(members))
	for _, conn := range members {
		ids = append(ids, conn.ID())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":    vars["kind"],
		"id":      vars["id"],
		"members": ids,
		"count":   len(ids),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
