package api

import (
	"net/http"
	"time"

	// Blank import required by swaggo to register the API definitions.
	_ "prism-ai/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures the chi router with all application routes.
func NewRouter(chatHandler *ChatHandler, convHandler *ConversationHandler, prefsHandler *PreferencesHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Liveness probe for container orchestration.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON routes carry a request timeout so client
		// connections never hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/conversations", convHandler.ListConversations)
			r.Get("/conversations/last-active", convHandler.GetLastActive)
			r.Get("/conversations/{conversationID}", convHandler.GetConversation)
			r.Put("/conversations/{conversationID}/title", convHandler.UpdateTitle)
			r.Put("/conversations/{conversationID}/mode", convHandler.UpdateMode)
			r.Delete("/conversations/{conversationID}", convHandler.DeleteConversation)
			r.Post("/conversations/{conversationID}/messages", convHandler.AppendMessage)

			r.Get("/preferences", prefsHandler.GetPreferences)
			r.Put("/preferences", prefsHandler.UpdatePreferences)

			r.Post("/summarize", chatHandler.HandleSummarize)
		})

		// Streaming routes must NOT have a timeout: they hold the
		// connection open for the duration of the generation.
		r.Group(func(r chi.Router) {
			r.Post("/chat", chatHandler.HandleChatStream)
		})
	})

	// Serves the static frontend for simplified local development; a
	// production deployment would put a reverse proxy in front instead.
	fileServer := http.FileServer(http.Dir("./frontend/dist"))
	r.Handle("/*", http.StripPrefix("/", fileServer))

	return r
}
