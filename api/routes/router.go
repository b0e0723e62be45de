package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rashidkhoury/fleetquote-backend/api/controllers"
	"github.com/rashidkhoury/fleetquote-backend/api/middleware"
	"github.com/rashidkhoury/fleetquote-backend/internal/costsheets"
	"github.com/rashidkhoury/fleetquote-backend/internal/quotes"
	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db"
	"github.com/rashidkhoury/fleetquote-backend/pkg/logger"
	"github.com/rashidkhoury/fleetquote-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	quoteService quotes.Service,
	costSheetService costsheets.Service,
) http.Handler {
	r := chi.NewRouter()

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", controllers.CreateQuote(quoteService, logg))
			r.Get("/", controllers.ListQuotes(quoteService, logg))

			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/", controllers.QuoteDetail(quoteService, logg))
				r.Put("/steps/{step}", controllers.SaveQuoteStep(quoteService, logg))
				r.Get("/pricing", controllers.QuotePricing(quoteService, logg))
				r.Post("/submit", controllers.SubmitQuote(quoteService, logg))
				r.Post("/decision", controllers.DecideQuote(quoteService, logg))
				r.Post("/revisions", controllers.NewQuoteRevision(quoteService, logg))

				r.Route("/cost-sheet", func(r chi.Router) {
					r.Post("/", controllers.CalculateCostSheet(costSheetService, logg))
					r.Put("/", controllers.RecalculateCostSheet(costSheetService, logg))
					r.Get("/", controllers.CurrentCostSheet(costSheetService, logg))
					r.Post("/submit", controllers.SubmitCostSheet(costSheetService, logg))
					r.Post("/approve", controllers.ApproveCostSheet(costSheetService, logg))
					r.Post("/reject", controllers.RejectCostSheet(costSheetService, logg))
				})
			})
		})
	})

	return r
}
