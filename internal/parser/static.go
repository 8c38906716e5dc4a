package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/NewsLens/internal/types"
)

// DefaultMinStaticText is the visible-text length below which a page is
// assumed to be rendered client side.
const DefaultMinStaticText = 500

// jsWallMarker is the phrase pages show when they need JavaScript.
const jsWallMarker = "enable JavaScript"

// IsStatic reports whether resp looks like a server-rendered page: its
// visible text is at least minText characters long and does not ask the
// reader to enable JavaScript. Non-2xx responses are never static.
func IsStatic(resp *types.Response, minText int) bool {
	if !resp.IsSuccess() {
		return false
	}
	doc, err := resp.Document()
	if err != nil {
		return false
	}
	text := VisibleText(doc)
	return len(text) >= minText && !strings.Contains(text, jsWallMarker)
}

// VisibleText returns the whitespace-collapsed text of the document with
// script and style contents removed. noscript is kept since that is where
// JavaScript walls usually live.
func VisibleText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	root = root.Clone()
	root.Find("script, style, template").Remove()
	return strings.Join(strings.Fields(root.Text()), " ")
}
