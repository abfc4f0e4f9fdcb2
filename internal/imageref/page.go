package imageref

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ExtractDirectImage pulls the direct image URL out of an HTML viewer page.
// Image hosts that answer a variant guess with their HTML page usually
// advertise the real file in the og:image or twitter:image meta tags. The
// body is converted to UTF-8 first when the content type declares another
// encoding.
func ExtractDirectImage(body []byte, contentType string) (string, bool) {
	utf8Body, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return "", false
	}

	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content, true
			}
		}
	}
	return "", false
}

// LooksLikeHTML reports whether a fetched body is an HTML page rather than
// image bytes.
func LooksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := strings.ToLower(string(body[:min(len(body), 256)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype")
}
