package mockapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentsight/agentsight-go/pkg/logger"
)

// RouterConfig tunes the mock server's middleware chain.
type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter assembles the mock backend's routes and middleware.
func NewRouter(store *Store, log *logger.Logger, cfg RouterConfig) chi.Router {
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	h := NewHandler(store, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Auth())
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/track/", h.Track)
		r.Post("/action_logs/", h.ActionLog)
		r.Post("/buttons/", h.Button)
		r.Post("/attachments/", h.Attachments)
		r.Post("/conversation-feedbacks/", h.Feedback)

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", h.CreateConversation)
			r.Get("/", h.ListConversations)
			r.Get("/lookup/", h.LookupConversation)

			r.Route("/{pk}", func(r chi.Router) {
				r.Get("/", h.GetConversation)
				r.Patch("/rename/", h.RenameConversation)
				r.Patch("/mark/", h.MarkConversation)
				r.Delete("/delete/", h.DeleteConversation)
				r.Patch("/update/", h.UpdateConversation)
				r.Get("/attachments/", h.ConversationAttachments)
			})
		})
	})

	return r
}
