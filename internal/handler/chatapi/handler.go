package chatapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elizatalk/backend/internal/service/engine"
	"github.com/elizatalk/backend/pkg/utils"
)

// Handler exposes the conversation engine over HTTP.
type Handler struct {
	engine *engine.Engine
}

// New creates the chat handler.
func New(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// RegisterRoutes wires the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/start", h.handleStart)
	r.Post("/chat/message", h.handleMessage)
	r.Post("/chat/listen", h.handleToggleListening)
	r.Post("/chat/audio", h.handleAudioFile)
	r.Put("/chat/role", h.handleSetRole)
	r.Get("/chat/state", h.handleState)
}

// state is the engine snapshot the UI polls between sends.
type state struct {
	Messages        interface{} `json:"messages"`
	IsLoading       bool        `json:"isLoading"`
	IsListening     bool        `json:"isListening"`
	MicError        string      `json:"micError,omitempty"`
	Placeholder     string      `json:"placeholder"`
	SelectedRole    string      `json:"selectedRole"`
	ActiveSessionID string      `json:"activeSessionId,omitempty"`
}

func (h *Handler) snapshot() state {
	return state{
		Messages:        h.engine.Messages(),
		IsLoading:       h.engine.IsLoading(),
		IsListening:     h.engine.IsListening(),
		MicError:        h.engine.MicError(),
		Placeholder:     h.engine.Placeholder(),
		SelectedRole:    h.engine.SelectedRole(),
		ActiveSessionID: h.engine.ActiveSessionID(),
	}
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Role     string `json:"role"`
		AvatarID string `json:"avatarId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.StartConversation(r.Context(), payload.Role, payload.AvatarID); err != nil {
		if errors.Is(err, engine.ErrBusy) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.SendMessage(r.Context(), payload.Text, false); err != nil {
		if errors.Is(err, engine.ErrBusy) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) handleToggleListening(w http.ResponseWriter, _ *http.Request) {
	h.engine.ToggleListening()
	utils.RespondJSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) handleAudioFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	h.engine.SendAudioFile(header.Filename)
	utils.RespondJSON(w, http.StatusAccepted, h.snapshot())
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Role == "" {
		utils.RespondError(w, http.StatusBadRequest, "role is required")
		return
	}

	h.engine.SetSelectedRole(payload.Role)
	utils.RespondJSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.snapshot())
}
