package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/broadcast"
	"server/internal/infra"
	"server/internal/ledger"
)

// App bundles the dependencies handlers need. Everything is injected once at
// startup; there are no package-level singletons.
type App struct {
	Ledger *ledger.Ledger
	Hub    *broadcast.Hub
	Cfg    *infra.Config
	Logger zerolog.Logger
}

func NewApp(l *ledger.Ledger, hub *broadcast.Hub, cfg *infra.Config, logger zerolog.Logger) *App {
	return &App{Ledger: l, Hub: hub, Cfg: cfg, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}
