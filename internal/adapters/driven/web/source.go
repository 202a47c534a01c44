// Package web implements driven.DocumentSource over an HTTP root, with
// <a href> recursion bounded by RecurseLinks, per spec.md §4.6/§6. Pages
// up to RecurseLinks hops from the root are also enumerated as documents; the fetch
// itself is delegated to the file-reader-style collaborator the core
// treats as external (spec.md §1), here a plain net/http client.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
)

// Source enumerates a web root and, up to RecurseDepth hops, the pages it
// links to via <a href>, per spec.md §6 recurse_links (range [0, 8]).
type Source struct {
	Root         string
	RecurseDepth int
	Client       *http.Client
}

// New creates a web Source with a sane default HTTP client timeout.
func New(root string, recurseDepth int) *Source {
	if recurseDepth < 0 {
		recurseDepth = 0
	}
	if recurseDepth > 8 {
		recurseDepth = 8
	}
	return &Source{
		Root:         root,
		RecurseDepth: recurseDepth,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Iterate implements driven.DocumentSource via a breadth-first crawl
// bounded by RecurseDepth, visiting each URL at most once.
func (s *Source) Iterate(yield func(domain.Document, error) bool) error {
	type item struct {
		url   string
		depth int
	}

	visited := map[string]struct{}{s.Root: {}}
	queue := []item{{url: s.Root, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		body, mtime, title, links, err := s.fetch(cur.url)
		if err != nil {
			if !yield(domain.Document{}, fmt.Errorf("fetch %s: %w", cur.url, err)) {
				return nil
			}
			continue
		}

		text := body
		doc := domain.Document{
			Locator: cur.url,
			MTime:   mtime,
			Title:   title,
			Type:    domain.DocumentTypeWebpage,
			Size:    int64(len(body)),
			GetText: func() (string, error) { return text, nil },
		}
		if !yield(doc, nil) {
			return nil
		}

		if cur.depth >= s.RecurseDepth {
			continue
		}
		for _, link := range links {
			resolved, err := resolveLink(cur.url, link)
			if err != nil {
				continue
			}
			if _, seen := visited[resolved]; seen {
				continue
			}
			visited[resolved] = struct{}{}
			queue = append(queue, item{url: resolved, depth: cur.depth + 1})
		}
	}
	return nil
}

func (s *Source) fetch(pageURL string) (body string, mtime int64, title string, links []string, err error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, "", nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", 0, "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", 0, "", nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, "", nil, err
	}

	mtime = time.Now().Unix()
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			mtime = t.Unix()
		}
	}

	title, links, text := parseHTML(raw)
	if title == "" {
		title = pageURL
	}
	return text, mtime, title, links, nil
}

// parseHTML extracts the page title, every <a href> target, and a plain
// text rendering of the body for tokenization.
func parseHTML(raw []byte) (title string, links []string, text string) {
	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return "", nil, string(raw)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil {
					title = n.FirstChild.Data
				}
			case "a":
				for _, attr := range n.Attr {
					if attr.Key == "href" && attr.Val != "" {
						links = append(links, attr.Val)
					}
				}
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, links, sb.String()
}

func resolveLink(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	resolved := baseURL.ResolveReference(refURL)
	resolved.Fragment = ""
	return resolved.String(), nil
}
