package voiceapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elizatalk/backend/internal/service/voice"
	"github.com/elizatalk/backend/pkg/utils"
)

// Handler exposes voice preferences and the voice catalog.
type Handler struct {
	controller *voice.Controller
}

// New creates the voice handler.
func New(controller *voice.Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes wires the voice routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/prefs", h.handlePrefs)
	r.Put("/voice/prefs", h.handleUpdatePrefs)
	r.Post("/voice/toggle", h.handleToggle)
	r.Get("/voice/voices", h.handleVoices)
	r.Post("/voice/cancel", h.handleCancel)
}

func (h *Handler) handlePrefs(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.controller.Prefs())
}

func (h *Handler) handleUpdatePrefs(w http.ResponseWriter, r *http.Request) {
	var settings voice.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.controller.UpdateSettings(r.Context(), settings))
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	enabled := h.controller.ToggleTts(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"isTtsEnabled": enabled})
}

func (h *Handler) handleVoices(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.controller.Voices())
}

func (h *Handler) handleCancel(w http.ResponseWriter, _ *http.Request) {
	h.controller.Cancel()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
