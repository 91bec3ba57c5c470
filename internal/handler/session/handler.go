package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elizatalk/backend/internal/service/engine"
	"github.com/elizatalk/backend/internal/storage"
	"github.com/elizatalk/backend/pkg/utils"
)

// Handler exposes persisted sessions and restore operations.
type Handler struct {
	gateway *storage.Gateway
	engine  *engine.Engine
}

// New creates the session handler.
func New(gateway *storage.Gateway, eng *engine.Engine) *Handler {
	return &Handler{gateway: gateway, engine: eng}
}

// RegisterRoutes wires the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleList)
	r.Post("/sessions/last/load", h.handleLoadLast)
	r.Get("/sessions/{id}", h.handleGet)
	r.Post("/sessions/{id}/load", h.handleLoad)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.gateway.Sessions(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read sessions")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, ok, err := h.gateway.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read session")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	found, err := h.engine.LoadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"loaded": true, "messages": h.engine.Messages()})
}

func (h *Handler) handleLoadLast(w http.ResponseWriter, r *http.Request) {
	found, err := h.engine.LoadLastSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "no saved sessions")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"loaded": true, "messages": h.engine.Messages()})
}
