package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tankops/bath-planner/internal/config"
	handlers "github.com/tankops/bath-planner/internal/handlers/v1alpha1"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/pkg/metrics"
	"github.com/tankops/bath-planner/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg           *config.Config
	listener      net.Listener
	moduleSrv     *service.ModuleService
	correctionSrv *service.CorrectionService
}

// New returns a new instance of a bath-planner server.
func New(
	cfg *config.Config,
	listener net.Listener,
	moduleService *service.ModuleService,
	correctionService *service.CorrectionService,
) *Server {
	return &Server{
		cfg:           cfg,
		listener:      listener,
		moduleSrv:     moduleService,
		correctionSrv: correctionService,
	}
}

// Router builds the HTTP handler serving the API.
func (s *Server) Router(metricMiddleware *metrics.Middleware) http.Handler {
	router := chi.NewRouter()

	if metricMiddleware != nil {
		router.Use(metricMiddleware.Handler)
	}
	router.Use(
		cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Service.AllowedOrigins,
			AllowedMethods: []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"X-Request-Id", "Content-Disposition"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	handlers.NewServiceHandler(s.moduleSrv, s.correctionSrv).Routes(router)
	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	srv := http.Server{
		Addr:              s.cfg.Service.Address,
		Handler:           s.Router(metricMiddleware),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
