package server

import (
	"net/http"

	"chartsync/internal/config"
	"chartsync/internal/dashboard"
	"chartsync/internal/logger"
	"chartsync/internal/pages"
	"chartsync/internal/render"
)

// Server exposes a dashboard over HTTP
type Server struct {
	Config    *config.Config
	Dashboard *dashboard.Dashboard
	Images    *render.PNGRenderer
	Pages     *render.EChartsRenderer
	Builder   *pages.Builder
	log       *logger.Logger
}

// NewServer creates a server for d. images and html hold the renderer output served under
// /charts/; either may be nil.
func NewServer(cfg *config.Config, d *dashboard.Dashboard, images *render.PNGRenderer, html *render.EChartsRenderer) *Server {
	return &Server{
		Config:    cfg,
		Dashboard: d,
		Images:    images,
		Pages:     html,
		Builder:   pages.NewBuilder(config.Version()),
		log:       logger.GetGlobalLogger().WithComponent("server"),
	}
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth)

	mux.HandleFunc("GET /api/charts", s.HandleListCharts)
	mux.HandleFunc("GET /api/charts/{anchor}", s.HandleGetChart)
	mux.HandleFunc("POST /api/charts/{anchor}/filter", s.HandleFilter)
	mux.HandleFunc("POST /api/charts/{anchor}/click", s.HandleClick)
	mux.HandleFunc("POST /api/charts/{anchor}/brush", s.HandleBrush)
	mux.HandleFunc("POST /api/charts/{anchor}/select", s.HandleSelect)
	mux.HandleFunc("POST /api/groups/{group}/{op}", s.HandleGroup)

	mux.HandleFunc("GET /api/snapshots", s.HandleListSnapshots)
	mux.HandleFunc("POST /api/snapshots/{name}", s.HandleSaveSnapshot)
	mux.HandleFunc("POST /api/snapshots/{name}/restore", s.HandleRestoreSnapshot)

	mux.HandleFunc("GET /charts/{file}", s.HandleChartFile)
	mux.HandleFunc("GET /{$}", s.HandleRoot)

	return mux
}

// Handler wraps the routes with request logging
func (s *Server) Handler() http.Handler {
	mux := s.SetupRoutes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)
		s.log.Debug("request", logger.Fields{"method": r.Method, "path": r.URL.Path, "status": rec.status})
	})
}

// Close cleans up server resources
func (s *Server) Close() error {
	return s.Dashboard.Close()
}
