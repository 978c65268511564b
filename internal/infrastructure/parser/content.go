package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// substantialContentLength is the text length a container needs to be accepted outright.
	substantialContentLength = 500
	// minContainerLength is the floor below which the page body is used instead.
	minContainerLength = 200
)

// noiseSelector matches elements that never carry article text.
var noiseSelector = strings.Join([]string{
	"script", "style", "nav", "footer", "iframe", "noscript",
	".ad", ".ads", ".advert", ".advertisement", "#ad", "#ads",
	".cookie", ".cookies", ".cookie-banner", ".cookie-consent", "#cookie-banner", "#cookie-consent",
	".menu", "#menu", ".sidebar", "#sidebar", "[role='navigation']",
}, ", ")

// contentSelectors lists main-content containers in priority order.
var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	"#content",
	".content",
	"#main-content",
	".main-content",
	".documentation",
	".docs-content",
	".markdown-body",
	".post-content",
	".entry-content",
}

// Extracted is the cleaned text of an HTML page.
type Extracted struct {
	Title string
	Text  string
}

// Page is everything the crawler needs from one fetched HTML document.
type Page struct {
	Extracted
	Links []string
}

// ExtractContent strips boilerplate from an HTML document and returns its title and plain text.
// sourceURL is used as the title when the document has none.
func ExtractContent(raw []byte, sourceURL string) (Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Extracted{}, fmt.Errorf("parse html: %w", err)
	}
	return extract(doc, sourceURL), nil
}

// ParsePage discovers links and extracts content from a single parse of raw.
// Links are collected before boilerplate removal so navigation menus still feed the crawl.
func ParsePage(raw []byte, pageURL string) (Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	links := discoverLinks(doc, base)
	return Page{Extracted: extract(doc, pageURL), Links: links}, nil
}

func extract(doc *goquery.Document, sourceURL string) Extracted {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = sourceURL
	}

	doc.Find(noiseSelector).Remove()

	var best string
	for _, selector := range contentSelectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}

		text := textOf(candidate)
		if utf8.RuneCountInString(text) > substantialContentLength {
			return Extracted{Title: title, Text: text}
		}
		if utf8.RuneCountInString(text) > utf8.RuneCountInString(best) {
			best = text
		}
	}

	if utf8.RuneCountInString(best) >= minContainerLength {
		return Extracted{Title: title, Text: best}
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return Extracted{Title: title, Text: textOf(doc.Selection)}
	}
	return Extracted{Title: title, Text: textOf(body)}
}

// blockElements separate their text from neighbours; inline elements do not.
var blockElements = map[atom.Atom]struct{}{
	atom.Address: {}, atom.Article: {}, atom.Aside: {}, atom.Blockquote: {}, atom.Br: {},
	atom.Dd: {}, atom.Div: {}, atom.Dl: {}, atom.Dt: {}, atom.Figcaption: {}, atom.Figure: {},
	atom.Footer: {}, atom.Form: {}, atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {},
	atom.H5: {}, atom.H6: {}, atom.Header: {}, atom.Hr: {}, atom.Li: {}, atom.Main: {},
	atom.Nav: {}, atom.Ol: {}, atom.P: {}, atom.Pre: {}, atom.Section: {}, atom.Table: {},
	atom.Td: {}, atom.Th: {}, atom.Tr: {}, atom.Ul: {},
}

// textOf concatenates the text nodes below the selection like Selection.Text,
// but pads block elements with a space so adjacent blocks do not run together.
func textOf(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		_, block := blockElements[n.DataAtom]
		block = block && n.Type == html.ElementNode
		if block {
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteByte(' ')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapseWhitespace(sb.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
