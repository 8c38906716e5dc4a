package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// ResultLinkSelector matches outbound result anchors on a search page.
const ResultLinkSelector = "a[href^='/url?q=']"

// ResultLinks is what one search result page yielded.
type ResultLinks struct {
	// Anchors is the number of result anchors on the page, kept or not.
	Anchors int

	// Links are the decoded target URLs, in page order, without duplicates
	// or excluded domains.
	Links []string
}

// ExtractResultLinks decodes the redirect anchors of a search result page.
// A link is dropped when it contains any of the exclude substrings or is
// already present in seen. seen is updated with every kept link.
func ExtractResultLinks(resp *types.Response, exclude []string, seen map[string]bool) (*ResultLinks, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.Request.URLString(), Selector: ResultLinkSelector, Err: err}
	}

	out := &ResultLinks{}
	for _, href := range doc.Find(ResultLinkSelector).Map(func(_ int, s *goquery.Selection) string {
		v, _ := s.Attr("href")
		return v
	}) {
		out.Anchors++
		link := DecodeResultHref(href)
		if link == "" || seen[link] || containsAny(link, exclude) {
			continue
		}
		seen[link] = true
		out.Links = append(out.Links, link)
	}
	return out, nil
}

// DecodeResultHref turns "/url?q=<target>&sa=..." into <target>.
func DecodeResultHref(href string) string {
	target := strings.TrimPrefix(href, "/url?q=")
	if i := strings.IndexByte(target, '&'); i >= 0 {
		target = target[:i]
	}
	if decoded, err := url.QueryUnescape(target); err == nil {
		target = decoded
	}
	return strings.TrimSpace(target)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
