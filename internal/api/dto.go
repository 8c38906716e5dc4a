package api

import "github.com/IshaanNene/NewsLens/internal/types"

type ArticleResponse struct {
	Title     string `json:"Title"`
	Summary   string `json:"Summary"`
	URL       string `json:"URL"`
	Sentiment string `json:"Sentiment"`
}

type SummarizeResponse struct {
	Company      string                 `json:"Company"`
	Articles     []ArticleResponse      `json:"Articles"`
	Distribution types.SentimentSummary `json:"Sentiment Distribution"`
}

type AudioRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type ArticleRequest struct {
	Title     string `json:"Title"`
	Summary   string `json:"Summary"`
	URL       string `json:"URL"`
	Sentiment string `json:"Sentiment"`
}

type ReportRequest struct {
	Articles []ArticleRequest `json:"articles"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func toArticleResponses(articles []types.Article) []ArticleResponse {
	res := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		res = append(res, ArticleResponse{
			Title:     a.Title,
			Summary:   a.Summary,
			URL:       a.URL,
			Sentiment: string(a.Sentiment),
		})
	}
	return res
}

func (r ArticleRequest) toArticle() types.Article {
	sentiment, _ := types.ParseSentiment(r.Sentiment)
	return types.Article{
		Title:     r.Title,
		Summary:   r.Summary,
		URL:       r.URL,
		Sentiment: sentiment,
	}
}
