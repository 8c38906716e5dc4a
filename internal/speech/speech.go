// Package speech renders text as MP3 audio through the public Google
// translate endpoints, translating it first when it is not already in the
// target language.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/text"
	"github.com/IshaanNene/NewsLens/internal/types"
)

// MaxPieceLen is the longest text, in characters, the TTS endpoint accepts
// per request.
const MaxPieceLen = 200

// ErrUnsupportedLanguage is returned for target languages outside Languages.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Languages maps the supported ISO 639-1 codes to display names.
var Languages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
}

// LanguageCodes returns the supported codes in sorted order.
func LanguageCodes() []string {
	codes := make([]string, 0, len(Languages))
	for c := range Languages {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Service translates and synthesizes speech.
type Service struct {
	cfg         config.SpeechConfig
	client      *http.Client
	store       *AudioStore
	userAgent   string
	onGenerated func()
	logger      *slog.Logger
}

// NewService creates a Service writing into store.
func NewService(cfg config.SpeechConfig, store *AudioStore, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		client:    &http.Client{Timeout: 30 * time.Second},
		store:     store,
		userAgent: "Mozilla/5.0",
		logger:    logger.With("component", "speech"),
	}
}

// OnGenerated registers a hook called after each audio file is written.
func (s *Service) OnGenerated(fn func()) { s.onGenerated = fn }

// Store returns the audio store.
func (s *Service) Store() *AudioStore { return s.store }

// Speak renders s in lang and returns the stored file. An empty lang uses
// the configured default.
func (s *Service) Speak(ctx context.Context, in, lang string) (*AudioFile, error) {
	in = strings.TrimSpace(in)
	if in == "" {
		return nil, types.ErrEmptyText
	}
	if lang == "" {
		lang = s.cfg.DefaultLang
	}
	lang = strings.ToLower(lang)
	if _, ok := Languages[lang]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	if src := DetectLanguage(in); src != lang {
		translated, err := s.Translate(ctx, in, lang)
		if err != nil {
			return nil, fmt.Errorf("translate to %s: %w", lang, err)
		}
		s.logger.Debug("text translated", "from", src, "to", lang)
		in = translated
	}

	audio, err := s.Synthesize(ctx, in, lang)
	if err != nil {
		return nil, err
	}

	file, err := s.store.Save(bytes.NewReader(audio), ".mp3")
	if err != nil {
		return nil, err
	}
	if s.onGenerated != nil {
		s.onGenerated()
	}
	s.logger.Info("audio generated", "name", file.Name, "lang", lang, "size", file.Size)
	return file, nil
}

// DetectLanguage returns the ISO 639-1 code of the text's language, or ""
// when the detection is not reliable.
func DetectLanguage(s string) string {
	info := whatlanggo.Detect(s)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// Translate sends s to the gtx translate endpoint with automatic source
// detection.
func (s *Service) Translate(ctx context.Context, in, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", in)

	body, err := s.get(ctx, s.cfg.TranslateURL+"?"+q.Encode())
	if err != nil {
		return "", err
	}
	return parseTranslation(body)
}

// parseTranslation reads the first element of the gtx response, a list of
// [translated, original, ...] segments.
func parseTranslation(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return "", fmt.Errorf("decode translation: unexpected response")
	}
	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("decode translation segments: %w", err)
	}
	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if part, ok := seg[0].(string); ok {
			b.WriteString(part)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", types.ErrEmptyResponse
	}
	return out, nil
}

// Synthesize fetches MP3 audio for s piece by piece and concatenates the
// segments.
func (s *Service) Synthesize(ctx context.Context, in, lang string) ([]byte, error) {
	pieces := SplitForSpeech(in, MaxPieceLen)
	if len(pieces) == 0 {
		return nil, types.ErrEmptyText
	}

	var audio bytes.Buffer
	for i, piece := range pieces {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", lang)
		q.Set("q", piece)
		q.Set("total", strconv.Itoa(len(pieces)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(piece)))

		seg, err := s.get(ctx, s.cfg.TTSURL+"?"+q.Encode())
		if err != nil {
			return nil, fmt.Errorf("synthesize piece %d/%d: %w", i+1, len(pieces), err)
		}
		audio.Write(seg)
	}
	return audio.Bytes(), nil
}

func (s *Service) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	if len(body) == 0 {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: types.ErrEmptyResponse}
	}
	return body, nil
}

// SplitForSpeech splits s into pieces of at most limit characters. Sentence
// boundaries are preferred; longer sentences are split between words and a
// single word longer than limit is cut.
func SplitForSpeech(s string, limit int) []string {
	var pieces []string
	for _, chunk := range text.Chunk(s, limit) {
		if utf8.RuneCountInString(chunk) <= limit {
			pieces = append(pieces, chunk)
			continue
		}
		pieces = append(pieces, splitWords(chunk, limit)...)
	}
	return pieces
}

func splitWords(s string, limit int) []string {
	var (
		pieces []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			pieces = append(pieces, string(cur))
			cur = cur[:0]
		}
	}
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > limit {
			flush()
			pieces = append(pieces, string(w[:limit]))
			w = w[limit:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) > limit:
			flush()
			cur = append(cur, w...)
		default:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		}
	}
	flush()
	return pieces
}
