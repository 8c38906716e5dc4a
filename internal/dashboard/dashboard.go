// Package dashboard serves the server-rendered web UI: a search form and a
// results page with per-article sentiment, a spoken sentiment summary and
// an optional markdown overview.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/speech"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// MinCompanyLen is the shortest company name the form accepts.
const MinCompanyLen = 3

const noArticlesMessage = "Sorry, no article found at the moment."

// Analyzer runs the per-company analysis flow.
type Analyzer interface {
	Analyze(ctx context.Context, q engine.Query) (*types.Report, error)
}

// Speaker renders text as stored audio.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) (*speech.AudioFile, error)
}

// Dashboard renders the UI pages.
type Dashboard struct {
	cfg      *config.Config
	analyzer Analyzer
	speaker  Speaker
	md       goldmark.Markdown
	pages    *template.Template
	logger   *slog.Logger
}

// New creates a Dashboard. speaker may be nil, in which case no audio is
// rendered.
func New(cfg *config.Config, analyzer Analyzer, speaker Speaker, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		cfg:      cfg,
		analyzer: analyzer,
		speaker:  speaker,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		pages:    template.Must(template.New("page").Funcs(funcs).Parse(pageHTML)),
		logger:   logger.With("component", "dashboard"),
	}
}

// Register mounts the UI routes on r.
func (d *Dashboard) Register(r gin.IRoutes) {
	r.GET("/", d.handleIndex)
	r.GET("/ui/analyze", d.handleAnalyze)
}

// formState echoes the submitted form back into the page.
type formState struct {
	Company  string
	Limit    int
	Skip     int
	External bool
	Overview bool
}

type articleView struct {
	Title     string
	Summary   string
	URL       string
	Sentiment types.Sentiment
}

type pageData struct {
	Form         formState
	MaxLimit     int
	Error        string
	Message      string
	Company      string
	Articles     []articleView
	Distribution string
	AudioURL     string
	Overview     template.HTML
}

func (d *Dashboard) handleIndex(c *gin.Context) {
	d.render(c, http.StatusOK, pageData{
		Form:     formState{Limit: d.cfg.Engine.DefaultLimit},
		MaxLimit: d.cfg.Engine.MaxLimit,
	})
}

func (d *Dashboard) handleAnalyze(c *gin.Context) {
	external := engine.ParseBool(c.Query("external"))
	form := formState{
		Company:  strings.TrimSpace(c.Query("company")),
		Limit:    engine.ParseLimit(&d.cfg.Engine, c.Query("limit"), external),
		Skip:     engine.ParseSkip(c.Query("skip")),
		External: external,
		Overview: engine.ParseBool(c.Query("overview")),
	}
	data := pageData{Form: form, MaxLimit: d.cfg.Engine.MaxLimit}

	if utf8.RuneCountInString(form.Company) < MinCompanyLen {
		data.Error = "Please enter a company name with at least 3 characters."
		d.render(c, http.StatusBadRequest, data)
		return
	}

	ctx := c.Request.Context()
	report, err := d.analyzer.Analyze(ctx, engine.Query{
		Company:     form.Company,
		Limit:       form.Limit,
		Skip:        form.Skip,
		UseExternal: form.External,
		Overview:    form.Overview,
	})
	switch {
	case errors.Is(err, types.ErrNoArticles):
		data.Message = noArticlesMessage
		d.render(c, http.StatusOK, data)
		return
	case err != nil:
		d.logger.Error("analysis failed", "company", form.Company, "error", err)
		data.Error = err.Error()
		d.render(c, http.StatusInternalServerError, data)
		return
	}

	data.Company = report.Company
	data.Distribution = report.Distribution.String()
	for _, a := range report.Articles {
		data.Articles = append(data.Articles, articleView{
			Title:     a.Title,
			Summary:   a.Summary,
			URL:       a.URL,
			Sentiment: a.Sentiment,
		})
	}

	if d.speaker != nil {
		if file, err := d.speaker.Speak(ctx, data.Distribution, d.cfg.Speech.DefaultLang); err != nil {
			d.logger.Warn("sentiment audio failed", "company", report.Company, "error", err)
		} else {
			data.AudioURL = "/audio/" + file.Name
		}
	}

	if report.Overview != "" {
		html, err := d.renderMarkdown(report.Overview)
		if err != nil {
			d.logger.Warn("overview render failed", "error", err)
		} else {
			data.Overview = html
		}
	}

	d.render(c, http.StatusOK, data)
}

// renderMarkdown converts model output to HTML. Raw HTML in the source is
// not passed through.
func (d *Dashboard) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := d.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (d *Dashboard) render(c *gin.Context, status int, data pageData) {
	var buf bytes.Buffer
	if err := d.pages.Execute(&buf, data); err != nil {
		d.logger.Error("template render failed", "error", err)
		c.String(http.StatusInternalServerError, "template error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// BubbleColor is the background used for a sentiment label.
func BubbleColor(s types.Sentiment) string {
	switch s {
	case types.SentimentPositive:
		return "#28fc03"
	case types.SentimentNegative:
		return "#fc3d03"
	default:
		return "#fcdb03"
	}
}

var funcs = template.FuncMap{
	"bubble": func(s types.Sentiment) template.CSS {
		return template.CSS("background-color: " + BubbleColor(s))
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}
