package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"postlift/domain/attribution"
	"postlift/internal/engine"
	"postlift/internal/errors"
	"postlift/internal/testkit"
)

// App is the self-contained demo server: it attributes a synthetic campaign
// from the test kit so the engine can be explored without Shopify or
// Instagram credentials.
type App struct {
	router *chi.Mux
	result *attribution.Result
}

// AppConfig holds demo application configuration
type AppConfig struct {
	Port string
	Seed int64
}

// NewApp creates the demo application and runs attribution once at startup
func NewApp(config AppConfig) (*App, error) {
	cfg := testkit.DefaultCampaignConfig()
	if config.Seed != 0 {
		cfg.Seed = config.Seed
	}
	orders, influencers := testkit.NewCampaignDataGenerator(cfg).Generate()

	eng, err := engine.New(attribution.DefaultWeights())
	if err != nil {
		return nil, errors.Wrap(err, "initializing engine")
	}
	result, err := eng.Compute(orders, influencers, cfg.CampaignStart, cfg.CampaignEnd)
	if err != nil {
		return nil, errors.Wrap(err, "attributing demo campaign")
	}

	app := &App{
		router: chi.NewRouter(),
		result: result,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleReport)
	a.router.Get("/api/result", a.handleResult)
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// handleReport serves the rendered methodology report
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(RenderHTML(MethodologyMarkdown(a.result)))
}

// handleResult serves the raw result payload
func (a *App) handleResult(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, a.result)
}

// Handler exposes the router for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start runs the demo server
func (a *App) Start(config AppConfig) error {
	port := config.Port
	if port == "" {
		port = "8090"
	}
	return http.ListenAndServe(":"+port, a.router)
}
