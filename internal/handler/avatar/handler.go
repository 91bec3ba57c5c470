package avatar

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	avatarservice "github.com/elizatalk/backend/internal/service/avatar"
	"github.com/elizatalk/backend/pkg/utils"
)

// Handler exposes the avatar directory over HTTP.
type Handler struct {
	directory *avatarservice.Directory
}

// New creates the avatar handler.
func New(directory *avatarservice.Directory) *Handler {
	return &Handler{directory: directory}
}

// RegisterRoutes wires the avatar routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/avatars", h.handleList)
	r.Post("/avatars", h.handleCreate)
	r.Post("/avatars/from-template/{templateID}", h.handleCreateFromTemplate)
	r.Get("/avatars/active", h.handleActive)
	r.Post("/avatars/deactivate", h.handleDeactivate)
	r.Get("/avatars/{id}", h.handleGet)
	r.Put("/avatars/{id}", h.handleUpdate)
	r.Delete("/avatars/{id}", h.handleDelete)
	r.Post("/avatars/{id}/activate", h.handleActivate)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.directory.Avatars())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input avatarservice.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, h.directory.Create(r.Context(), input))
}

func (h *Handler) handleCreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")

	var input avatarservice.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.directory.CreateFromTemplate(r.Context(), templateID, input)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	av, ok := h.directory.Avatar(chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "avatar not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, av)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var update avatarservice.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	av, err := h.directory.UpdateAvatar(r.Context(), chi.URLParam(r, "id"), update)
	if errors.Is(err, avatarservice.ErrAvatarNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, av)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.SetActive(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.directory.ClearActive(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) handleActive(w http.ResponseWriter, _ *http.Request) {
	av, ok := h.directory.Active()
	if !ok {
		utils.RespondJSON(w, http.StatusOK, nil)
		return
	}
	utils.RespondJSON(w, http.StatusOK, av)
}
