package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/shopease/backend/internal/handler/session"
	"github.com/zhouzirui/shopease/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/shopease/backend/internal/middleware"
	"github.com/zhouzirui/shopease/backend/internal/model/catalog"
	"github.com/zhouzirui/shopease/backend/internal/service/assistant"
	"github.com/zhouzirui/shopease/backend/internal/service/transcript"
	"github.com/zhouzirui/shopease/backend/pkg/utils"
)

// Dependencies 路由所需的核心服务。
type Dependencies struct {
	Assistant   *assistant.Service
	Transcripts *transcript.Store
	Catalog     *catalog.Catalog
	Provider    string
	Model       string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	ctrl := deps.Assistant.Controller()
	sessionHandler := session.New(ctrl, deps.Transcripts)
	streamHandler := stream.New(deps.Assistant)

	r.Route("/api", func(api chi.Router) {
		api.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			snap := ctrl.Snapshot()
			notices := deps.Catalog.Notices()
			if notices == nil {
				notices = []catalog.Notice{}
			}
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":     "ok",
				"provider":   deps.Provider,
				"model":      deps.Model,
				"sessionId":  snap.ID,
				"processing": snap.Processing,
				"notices":    notices,
			})
		})

		sessionHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	return r
}
