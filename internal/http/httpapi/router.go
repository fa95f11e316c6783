package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter wires the HTTP surface. The webhook route is deliberately outside
// the rate limiter: it is authenticated by signature and throttling it would
// only feed the provider's retry loop.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.Locale(app.Cfg.DefaultLocale, lookup),
	)

	r.Get("/", app.Summary)
	r.Get("/healthz", app.Health)
	r.Get("/live", app.Live)

	r.With(middleware.RateLimit(app.Cfg.RateLimitMax, app.Cfg.RateLimitWindow)).
		Post("/donate", app.DonationsCreate)

	r.Post("/webhook/payment", app.PaymentWebhook)

	return r
}
