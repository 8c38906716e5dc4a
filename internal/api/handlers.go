package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/speech"
	"github.com/IshaanNene/NewsLens/internal/types"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: config.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSummarize(c *gin.Context) {
	if s.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analyzer not initialized"})
		return
	}

	company := strings.TrimSpace(c.Query("company"))
	if company == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Company name is required"})
		return
	}

	external := engine.ParseBool(c.Query("gemini"))
	q := engine.Query{
		Company:     company,
		Limit:       engine.ParseLimit(&s.cfg.Engine, c.Query("limit"), external),
		Skip:        engine.ParseSkip(c.Query("skip")),
		UseExternal: external,
	}

	report, err := s.analyzer.Analyze(c.Request.Context(), q)
	switch {
	case errors.Is(err, types.ErrNoArticles):
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No articles found for %s", company)})
		return
	case errors.Is(err, types.ErrInvalidCompany):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SummarizeResponse{
		Company:      report.Company,
		Articles:     toArticleResponses(report.Articles),
		Distribution: report.Distribution,
	})
}

func (s *Server) handleAudio(c *gin.Context) {
	if s.speaker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech not initialized"})
		return
	}

	var req AudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = s.cfg.Speech.DefaultLang
	}

	file, err := s.speaker.Speak(c.Request.Context(), req.Text, lang)
	switch {
	case errors.Is(err, speech.ErrUnsupportedLanguage), errors.Is(err, types.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", file.ContentType)
	c.FileAttachment(file.Path, "output.mp3")
}

func (s *Server) handleAudioFile(c *gin.Context) {
	if s.audio == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audio not found"})
		return
	}
	file, err := s.audio.Open(c.Param("file"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audio not found"})
		return
	}
	c.Header("Content-Type", file.ContentType)
	c.File(file.Path)
}

func (s *Server) handleOverview(c *gin.Context) {
	if s.writer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report writer not initialized"})
		return
	}
	s.handleReport(c, "overview", s.writer.Overview)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	if s.writer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report writer not initialized"})
		return
	}
	s.handleReport(c, "analysis", s.writer.Compare)
}

// handleReport answers {key: markdown}. Model failures map to 502.
func (s *Server) handleReport(c *gin.Context, key string, write func(context.Context, []types.Article) (string, error)) {
	articles, msg := bindArticles(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	md, err := write(c.Request.Context(), articles)
	if err != nil {
		_ = c.Error(err)
		s.logger.Warn("report generation failed", "report", key, "articles", len(articles), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to generate %s: %v", key, err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{key: md})
}

// bindArticles reads a ReportRequest. A non-empty message means the body
// is invalid.
func bindArticles(c *gin.Context) ([]types.Article, string) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "Invalid request body"
	}
	if len(req.Articles) == 0 {
		return nil, "At least one article is required"
	}
	articles := make([]types.Article, 0, len(req.Articles))
	for i, a := range req.Articles {
		if strings.TrimSpace(a.Title) == "" {
			return nil, fmt.Sprintf("Article %d is missing a Title", i+1)
		}
		articles = append(articles, a.toArticle())
	}
	return articles, ""
}
