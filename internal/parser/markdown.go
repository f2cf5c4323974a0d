package parser

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files, the primary input format for
// OCR-derived papers. The source text passes through untouched; goldmark
// is only used to find the title heading.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	title := ""
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(string(h.Text(src)))
			break
		}
	}
	if title == "" {
		title = baseTitle(filename)
	}

	markdown := string(src)
	return &Document{
		Title:    title,
		Markdown: markdown,
		Pages:    splitPageMarkers(markdown),
	}, nil
}

var pageMarker = regexp.MustCompile(`_page_(\d+)_`)

// splitPageMarkers reassembles per-page text from OCR image placeholders
// such as ![](_page_3_Figure_1.jpeg). Text before the first marker
// belongs to the first page. OCR pipelines number pages from zero, so
// when the lowest marker seen is 0 all numbers shift up by one.
func splitPageMarkers(markdown string) []string {
	lines := strings.Split(markdown, "\n")

	sawZero := false
	for _, line := range lines {
		if m := pageMarker.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n == 0 {
				sawZero = true
				break
			}
		}
	}
	offset := 0
	if sawZero {
		offset = 1
	}

	byPage := make(map[int][]string)
	current := 1
	maxPage := 1
	for _, line := range lines {
		if m := pageMarker.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				current = n + offset
				if current < 1 {
					current = 1
				}
				if current > maxPage {
					maxPage = current
				}
			}
		}
		byPage[current] = append(byPage[current], line)
	}

	pages := make([]string, maxPage)
	for p := 1; p <= maxPage; p++ {
		pages[p-1] = strings.Join(byPage[p], "\n")
	}
	if maxPage == 1 && strings.TrimSpace(pages[0]) == "" {
		return nil
	}
	return pages
}
