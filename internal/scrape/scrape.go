package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// SiteInfo es lo que se extrae del sitio de una coleccion durante el
// onboarding: texto de lore candidato y pistas de tema visual.
type SiteInfo struct {
	Title        string   `json:"title"`
	TextSnippets []string `json:"text_snippets,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	FontFamilies []string `json:"font_families,omitempty"`
}

// Scraper descarga y parsea la pagina principal de un universo.
type Scraper struct {
	httpClient *http.Client
	maxSnippet int
	maxTotal   int
}

func NewScraper() *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxSnippet: 400,
		maxTotal:   30,
	}
}

var (
	hexColorRe   = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	fontFamilyRe = regexp.MustCompile(`font-family\s*:\s*([^;}"']+)`)
)

// Scrape baja la URL y devuelve titulo, fragmentos de texto visibles y las
// pistas de tema encontradas en CSS inline. Falla en errores de red o
// status != 2xx; el caller decide si degradar.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (SiteInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return SiteInfo{}, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("User-Agent", "soul-feed-onboarder/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SiteInfo{}, fmt.Errorf("fetch site: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SiteInfo{}, fmt.Errorf("fetch site: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return SiteInfo{}, fmt.Errorf("parse site html: %w", err)
	}
	return s.extract(doc), nil
}

func (s *Scraper) extract(doc *html.Node) SiteInfo {
	info := SiteInfo{Title: findTitle(doc)}

	colors := map[string]bool{}
	fonts := map[string]bool{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style":
				css := textContent(n)
				collectThemeHints(css, colors, fonts)
				return
			case "script", "nav", "footer", "header", "noscript":
				return
			case "p", "li", "blockquote", "h1", "h2", "h3":
				if len(info.TextSnippets) < s.maxTotal {
					t := textContent(n)
					if len(t) > s.maxSnippet {
						t = t[:s.maxSnippet]
					}
					if t != "" {
						info.TextSnippets = append(info.TextSnippets, t)
					}
				}
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "style" {
					collectThemeHints(attr.Val, colors, fonts)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	body := findBody(doc)
	if body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	// Los <style> suelen vivir en <head>, fuera del body.
	if head := findElement(doc, "head"); head != nil && body != nil {
		walk(head)
	}

	for c := range colors {
		info.Colors = append(info.Colors, c)
	}
	for f := range fonts {
		info.FontFamilies = append(info.FontFamilies, f)
	}
	return info
}

func collectThemeHints(css string, colors, fonts map[string]bool) {
	for _, m := range hexColorRe.FindAllString(css, -1) {
		colors[strings.ToLower(m)] = true
	}
	for _, m := range fontFamilyRe.FindAllStringSubmatch(css, -1) {
		family := strings.TrimSpace(m[1])
		if family != "" {
			fonts[family] = true
		}
	}
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	return findElement(n, "body")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
