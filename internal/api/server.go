package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Farman-RT/QuickSaver/internal/delivery"
	"github.com/Farman-RT/QuickSaver/internal/fetch"
	"github.com/Farman-RT/QuickSaver/internal/ledger"
	"github.com/Farman-RT/QuickSaver/internal/logging"
)

const (
	defaultAdminLimit = 200
	maxSubmitBody     = 64 << 10
)

// Fetcher runs a submission to completion.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (fetch.Result, error)
}

// Opener opens a token for one-time streaming.
type Opener interface {
	Open(token string) (*delivery.Download, error)
}

// History reads the request ledger.
type History interface {
	Recent(ctx context.Context, limit int) ([]ledger.Entry, error)
	Count(ctx context.Context) (int64, error)
}

// HealthReporter supplies the details behind GET /health.
type HealthReporter interface {
	Health(ctx context.Context) Health
}

// Options wires the server's collaborators. History and Health are optional.
type Options struct {
	Fetcher    Fetcher
	Delivery   Opener
	History    History
	Health     HealthReporter
	AdminToken string
	AdminLimit int
	Debug      bool
	Logger     *slog.Logger
}

// Server routes HTTP requests to the fetch, delivery and ledger components.
type Server struct {
	engine     *gin.Engine
	fetcher    Fetcher
	delivery   Opener
	history    History
	health     HealthReporter
	adminLimit int
	logger     *slog.Logger
}

// New builds the gin engine and registers routes.
func New(opts Options) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	limit := opts.AdminLimit
	if limit <= 0 {
		limit = defaultAdminLimit
	}
	s := &Server{
		fetcher:    opts.Fetcher,
		delivery:   opts.Delivery,
		history:    opts.History,
		health:     opts.Health,
		adminLimit: limit,
		logger:     logging.NewComponentLogger(opts.Logger, "http"),
	}

	engine := gin.New()
	engine.Use(requestID(), recovery(s.logger), accessLog(s.logger))
	engine.POST("/api/download", s.handleSubmit)
	engine.GET("/download/*token", s.handleRedeem)
	engine.GET("/health", s.handleHealth)
	if opts.AdminToken != "" && opts.History != nil {
		admin := engine.Group("/api/admin", bearerAuth(opts.AdminToken))
		admin.GET("/requests", s.handleRequests)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
	s.engine = engine
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}
