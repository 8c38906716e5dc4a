// Package api exposes the analysis flow, the speech service and the
// cross-article reports over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/observability"
	"github.com/IshaanNene/NewsLens/internal/speech"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Analyzer runs the per-company analysis flow.
type Analyzer interface {
	Analyze(ctx context.Context, q engine.Query) (*types.Report, error)
}

// ReportWriter produces markdown reports across a set of articles.
type ReportWriter interface {
	Overview(ctx context.Context, articles []types.Article) (string, error)
	Compare(ctx context.Context, articles []types.Article) (string, error)
}

// Speaker renders text as stored audio.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) (*speech.AudioFile, error)
}

// Server is the HTTP front of the service.
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	httpSrv *http.Server
	logger  *slog.Logger
	started time.Time

	// Collaborators (set at runtime)
	analyzer Analyzer
	writer   ReportWriter
	speaker  Speaker
	audio    *speech.AudioStore
	metrics  *observability.Metrics
}

// NewServer creates a Server with its routes registered. Handlers whose
// collaborator has not been set answer 503.
func NewServer(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger.With("component", "api_server"),
		metrics: metrics,
		started: time.Now(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger, metrics))
	r.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))
	s.router = r

	s.registerRoutes()
	return s
}

// SetAnalyzer sets the analysis flow.
func (s *Server) SetAnalyzer(a Analyzer) { s.analyzer = a }

// SetReportWriter sets the overview and comparison writer.
func (s *Server) SetReportWriter(w ReportWriter) { s.writer = w }

// SetSpeaker sets the text-to-speech service.
func (s *Server) SetSpeaker(sp Speaker) { s.speaker = sp }

// SetAudioStore sets the directory generated audio is served from.
func (s *Server) SetAudioStore(store *speech.AudioStore) { s.audio = store }

// Router returns the gin engine so other surfaces can mount routes on it.
func (s *Server) Router() *gin.Engine { return s.router }

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.GET("/api/health", s.handleHealth)

	news := s.router.Group("/api/news")
	news.GET("/summarize", s.handleSummarize)
	news.POST("/overview", s.handleOverview)
	news.POST("/analysis", s.handleAnalysis)

	s.router.POST("/api/text/audio", s.handleAudio)
	s.router.GET("/audio/:file", s.handleAudioFile)

	if s.cfg.Metrics.Enabled {
		s.router.GET(s.cfg.Metrics.Path, gin.WrapH(s.metrics))
	}
}

// Start binds the listen address and serves in the background. Bind
// failures are returned; serve failures after that are logged.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.httpSrv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	s.logger.Info("API server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	s.logger.Info("API server stopping")
	return s.httpSrv.Shutdown(ctx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
