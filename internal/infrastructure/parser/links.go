package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DiscoverLinks returns every anchor target of an HTML page as an absolute http(s) URL.
// Fragments are dropped and duplicates removed; document order is preserved.
func DiscoverLinks(raw []byte, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return discoverLinks(doc, base), nil
}

func discoverLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		absolute := base.ResolveReference(ref)
		if absolute.Scheme != "http" && absolute.Scheme != "https" {
			return
		}

		link := CanonicalURL(absolute)
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// CanonicalURL drops the fragment and gives an empty path the root path,
// so "https://host", "https://host/" and "https://host/#top" are one page.
func CanonicalURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	if c.Path == "" && c.Opaque == "" {
		c.Path = "/"
		c.RawPath = ""
	}
	return c.String()
}
