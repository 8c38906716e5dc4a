package engine

import (
	"net/url"
	"sort"
	"strings"
)

// LinkSet tracks the article URLs already handled in one request so that a
// story listed twice by the search provider is fetched once. It is not safe
// for concurrent use; each request owns its own set.
type LinkSet struct {
	seen map[string]struct{}
}

// NewLinkSet creates an empty LinkSet.
func NewLinkSet(capacity int) *LinkSet {
	return &LinkSet{seen: make(map[string]struct{}, capacity)}
}

// Add records rawURL and reports whether it was new.
func (s *LinkSet) Add(rawURL string) bool {
	key := CanonicalizeURL(rawURL)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct links recorded.
func (s *LinkSet) Len() int {
	return len(s.seen)
}

// trackingParams are query keys that identify a click rather than a page.
var trackingParams = map[string]bool{
	"fbclid": true, "gclid": true, "ocid": true, "cmpid": true, "ref": true,
}

// CanonicalizeURL normalizes an article URL for de-duplication:
// lowercases scheme and host, drops the fragment, default ports, utm_* and
// other click-tracking parameters, sorts the remaining query and removes a
// trailing slash.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			if strings.HasPrefix(strings.ToLower(k), "utm_") || trackingParams[strings.ToLower(k)] {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var pairs []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(pairs, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
