package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	personamodel "github.com/elizatalk/backend/internal/model/persona"
	personaservice "github.com/elizatalk/backend/internal/service/persona"
	"github.com/elizatalk/backend/pkg/utils"
)

// Handler exposes roles, role templates, and personality profiles.
type Handler struct {
	registry *personaservice.Registry
}

// New creates the persona handler.
func New(registry *personaservice.Registry) *Handler {
	return &Handler{registry: registry}
}

// RegisterRoutes wires the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/roles", h.handleRoles)
	r.Get("/templates", h.handleTemplates)
	r.Get("/profiles", h.handleProfiles)
	r.Get("/profiles/{id}", h.handleProfile)
}

func (h *Handler) handleRoles(w http.ResponseWriter, _ *http.Request) {
	roles := make([]map[string]string, 0, len(personamodel.Roles))
	for _, role := range personamodel.Roles {
		roles = append(roles, map[string]string{
			"role": role,
			"name": personamodel.RoleName(role),
		})
	}
	utils.RespondJSON(w, http.StatusOK, roles)
}

func (h *Handler) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, personamodel.RoleTemplates())
}

func (h *Handler) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.registry.Profiles())
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.registry.Profile(chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}
