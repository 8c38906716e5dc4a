// Lambda: analyze-company
//
// Runs the company analysis behind API Gateway and answers with the same
// JSON body as GET /api/news/summarize.
//
// Query parameters: company (required), limit, skip, gemini.
// Configuration comes from NEWSLENS_* environment variables. When
// NEWSLENS_LAMBDA_EXPORT is true the report is also exported with the
// configured storage backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/storage"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// Analyzer runs the per-company analysis flow.
type Analyzer interface {
	Analyze(ctx context.Context, q engine.Query) (*types.Report, error)
}

// Handler answers API Gateway proxy requests.
type Handler struct {
	cfg      *config.Config
	analyzer Analyzer
	exporter func(ctx context.Context, report *types.Report) error
	logger   *slog.Logger
}

type summarizeBody struct {
	Company      string                 `json:"Company"`
	Articles     []types.Article        `json:"Articles"`
	Distribution types.SentimentSummary `json:"Sentiment Distribution"`
}

// Handle runs one analysis.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := req.QueryStringParameters
	company := strings.TrimSpace(params["company"])
	if company == "" {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "Company name is required"}), nil
	}

	external := engine.ParseBool(params["gemini"])
	q := engine.Query{
		Company:     company,
		Limit:       engine.ParseLimit(&h.cfg.Engine, params["limit"], external),
		Skip:        engine.ParseSkip(params["skip"]),
		UseExternal: external,
	}
	h.logger.Info("analyze request", "company", company, "limit", q.Limit, "skip", q.Skip, "external", external)

	report, err := h.analyzer.Analyze(ctx, q)
	switch {
	case errors.Is(err, types.ErrNoArticles):
		return jsonResponse(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("No articles found for %s", company)}), nil
	case err != nil:
		h.logger.Error("analysis failed", "company", company, "error", err)
		return jsonResponse(http.StatusInternalServerError, map[string]string{"error": err.Error()}), nil
	}

	if h.exporter != nil {
		if err := h.exporter(ctx, report); err != nil {
			h.logger.Warn("report export failed", "company", company, "error", err)
		}
	}

	return jsonResponse(http.StatusOK, summarizeBody{
		Company:      report.Company,
		Articles:     report.Articles,
		Distribution: report.Distribution,
	}), nil
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	eng, err := engine.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("create engine", "error", err)
		os.Exit(1)
	}

	h := &Handler{cfg: cfg, analyzer: eng, logger: logger}
	if engine.ParseBool(os.Getenv("NEWSLENS_LAMBDA_EXPORT")) {
		h.exporter = func(ctx context.Context, report *types.Report) error {
			s, err := storage.New(cfg.Storage, logger)
			if err != nil {
				return err
			}
			return storage.Export(ctx, s, report)
		}
	}

	lambda.Start(h.Handle)
}
