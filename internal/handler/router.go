package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	avatarHandler "github.com/elizatalk/backend/internal/handler/avatar"
	"github.com/elizatalk/backend/internal/handler/chatapi"
	personaHandler "github.com/elizatalk/backend/internal/handler/persona"
	sessionHandler "github.com/elizatalk/backend/internal/handler/session"
	speechHandler "github.com/elizatalk/backend/internal/handler/speech"
	"github.com/elizatalk/backend/internal/handler/voiceapi"
	middlewarePkg "github.com/elizatalk/backend/internal/middleware"
	avatarService "github.com/elizatalk/backend/internal/service/avatar"
	"github.com/elizatalk/backend/internal/service/engine"
	"github.com/elizatalk/backend/internal/service/listen"
	personaService "github.com/elizatalk/backend/internal/service/persona"
	"github.com/elizatalk/backend/internal/service/voice"
	"github.com/elizatalk/backend/internal/storage"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	gateway *storage.Gateway,
	registry *personaService.Registry,
	directory *avatarService.Directory,
	eng *engine.Engine,
	voiceCtrl *voice.Controller,
	listenCtrl *listen.Controller,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		avatarHandler.New(directory).RegisterRoutes(api)
		personaHandler.New(registry).RegisterRoutes(api)
		chatapi.New(eng).RegisterRoutes(api)
		sessionHandler.New(gateway, eng).RegisterRoutes(api)
		voiceapi.New(voiceCtrl).RegisterRoutes(api)
		speechHandler.New(voiceCtrl, listenCtrl).RegisterRoutes(api)
	})

	return r
}
