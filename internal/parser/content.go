package parser

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// paragraphScopes are tried in order when readability finds nothing.
var paragraphScopes = []string{"article p", "main p", "p"}

// metaXPaths locate the page title and publisher in document metadata.
var (
	titleXPaths = []string{
		"//meta[@property='og:title']/@content",
		"//meta[@name='twitter:title']/@content",
		"//title",
	}
	siteXPaths = []string{
		"//meta[@property='og:site_name']/@content",
		"//meta[@name='application-name']/@content",
	}
)

// Extract returns the title and readable text of an article page.
// Readability is tried first; paragraph text is the fallback.
func (e *Extractor) Extract(resp *types.Response) (*Content, error) {
	pageURL := resp.FinalURL
	if pageURL == "" && resp.Request != nil {
		pageURL = resp.Request.URLString()
	}

	if resp.IsPDF() {
		c, err := ExtractPDF(resp.Body)
		if err != nil {
			return nil, &types.ParseError{URL: pageURL, Err: err}
		}
		return c, nil
	}

	root, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: pageURL, Err: err}
	}

	content := &Content{
		Title:    firstXPath(root, titleXPaths),
		SiteName: firstXPath(root, siteXPaths),
	}

	u, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(resp.Body), u)
	if err != nil {
		e.logger.Debug("readability failed", "url", pageURL, "error", err)
	}
	if content.Title == "" {
		content.Title = strings.TrimSpace(article.Title)
	}
	if content.SiteName == "" {
		content.SiteName = article.SiteName
	}

	if text := strings.TrimSpace(article.TextContent); text != "" {
		content.Text = text
		content.Method = "readability"
		return content, nil
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: pageURL, Err: err}
	}
	for _, scope := range paragraphScopes {
		if text := paragraphText(doc, scope); text != "" {
			content.Text = text
			content.Method = "paragraphs"
			return content, nil
		}
	}

	return nil, &types.ParseError{URL: pageURL, Selector: strings.Join(paragraphScopes, ", "), Err: types.ErrEmptyResponse}
}

func paragraphText(doc *goquery.Document, selector string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// firstXPath returns the trimmed text of the first expression that matches.
func firstXPath(root *html.Node, exprs []string) string {
	for _, expr := range exprs {
		node, err := htmlquery.Query(root, expr)
		if err != nil || node == nil {
			continue
		}
		if v := strings.TrimSpace(htmlquery.InnerText(node)); v != "" {
			return v
		}
	}
	return ""
}
