// Package imageref validates raw image references from the catalog and
// expands them into the ordered fallback ladder the dispatcher walks when an
// unreliable host 404s or serves the wrong content.
package imageref

import (
	"net/url"
	"strings"
)

const (
	// directHost serves raw image bytes
	directHost = "i.imgur.com"
	// pageHost serves HTML viewer pages, never usable directly
	pageHost = "imgur.com"

	legacyRawHost    = "raw.github.com"
	canonicalRawHost = "raw.githubusercontent.com"
)

// Rejection reasons reported by Normalize
const (
	ReasonEmpty     = "empty URL"
	ReasonInvalid   = "invalid URL"
	ReasonAlbum     = "album/gallery page, needs direct file link"
	ReasonNotDirect = "not a direct image link"
)

// Variant pairs a candidate extension with the MIME type it implies.
type Variant struct {
	Ext  string
	MIME string
}

// variantLadder is the ordered fallback policy for the direct-image host.
// Adding a host means adding its table here, not another retry chain.
var variantLadder = []Variant{
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
	{".png", "image/png"},
	{".webp", "image/webp"},
}

// Result is the outcome of normalizing a raw reference.
type Result struct {
	OK     bool
	URL    string
	Reason string
}

// Normalize trims and repairs a raw image reference and rejects shapes known
// to never serve image bytes: imgur album/gallery pages and bare imgur page
// links. The legacy raw.github.com domain is rewritten to its current
// canonical host.
func Normalize(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{Reason: ReasonEmpty}
	}

	// Stray leading dots come from malformed "..https://" copy-paste prefixes
	s = strings.TrimSpace(strings.TrimLeft(s, "."))
	if s == "" {
		return Result{Reason: ReasonEmpty}
	}

	s = strings.Replace(s, legacyRawHost, canonicalRawHost, 1)

	u, err := url.Parse(s)
	if err != nil {
		return Result{Reason: ReasonInvalid}
	}

	host := strings.ToLower(u.Hostname())
	if host == pageHost || host == "www."+pageHost {
		if strings.HasPrefix(u.Path, "/a/") || strings.HasPrefix(u.Path, "/gallery/") {
			return Result{Reason: ReasonAlbum}
		}
		return Result{Reason: ReasonNotDirect}
	}

	return Result{OK: true, URL: s}
}

// ExpandVariants returns the ordered list of candidate URLs for one
// reference. URLs off the direct-image host pass through unchanged. On the
// direct host the query string and any known extension are stripped and each
// ladder extension is appended after the original, in the fixed ladder order.
func ExpandVariants(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil || strings.ToLower(u.Hostname()) != directHost {
		return []string{rawURL}
	}

	base := rawURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	lower := strings.ToLower(base)
	for _, v := range variantLadder {
		if strings.HasSuffix(lower, v.Ext) {
			base = base[:len(base)-len(v.Ext)]
			break
		}
	}

	out := make([]string, 0, len(variantLadder)+1)
	out = append(out, rawURL)
	for _, v := range variantLadder {
		out = append(out, base+v.Ext)
	}
	return out
}

// MIMEForURL guesses the MIME type from a candidate URL's extension. The
// fallback matches what image hosts serve most often.
func MIMEForURL(rawURL string) string {
	s := rawURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	lower := strings.ToLower(s)
	for _, v := range variantLadder {
		if strings.HasSuffix(lower, v.Ext) {
			return v.MIME
		}
	}
	return "image/jpeg"
}

// Filename derives an attachment filename from a candidate URL.
func Filename(rawURL string) string {
	s := rawURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "foto.jpg"
	}
	return s
}
