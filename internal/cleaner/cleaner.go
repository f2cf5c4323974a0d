// Package cleaner normalizes OCR-derived Markdown renderings of scientific
// papers before segmentation: figure placeholders out, inline HTML converted
// to lightweight markup, journal metadata stripped, hard-wrapped lines merged
// and pipe tables identified as opaque blocks.
package cleaner

import (
	"regexp"
	"strings"
)

// CleanedDocument is the result of a full cleaning pass. It is built once
// per document and never mutated afterwards.
type CleanedDocument struct {
	Text              string         `json:"text"`
	Tables            []TableBlock   `json:"tables"`
	RemovedCounts     map[string]int `json:"removed_counts"`
	OriginalLineCount int            `json:"original_line_count"`
	CleanedLineCount  int            `json:"cleaned_line_count"`
}

// Options toggles individual cleaning passes. A disabled pass leaves its
// patterns in the text untouched and reports a zero count.
type Options struct {
	RemoveImages   bool
	ConvertHTML    bool
	RemoveMetadata bool
	MergeLines     bool
	ExtractTables  bool
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{
		RemoveImages:   true,
		ConvertHTML:    true,
		RemoveMetadata: true,
		MergeLines:     true,
		ExtractTables:  true,
	}
}

// Cleaner applies the configured passes in a fixed order.
type Cleaner struct {
	opts Options
}

func New(opts Options) *Cleaner {
	return &Cleaner{opts: opts}
}

// Figure placeholders emitted by the PDF-to-Markdown converter, e.g.
// ![](_page_3_figure_1.jpeg).
var imagePattern = regexp.MustCompile(`!\[\]\(_page_[^)]*\)`)

type htmlRule struct {
	re   *regexp.Regexp
	repl string
}

var htmlRules = []htmlRule{
	{regexp.MustCompile(`(?is)<sub>(.*?)</sub>`), `_{$1}`},
	{regexp.MustCompile(`(?is)<sup>(.*?)</sup>`), `^{$1}`},
	{regexp.MustCompile(`(?is)<i>(.*?)</i>`), `*$1*`},
	{regexp.MustCompile(`(?is)<em>(.*?)</em>`), `*$1*`},
	{regexp.MustCompile(`(?is)<b>(.*?)</b>`), `**$1**`},
	{regexp.MustCompile(`(?is)<strong>(.*?)</strong>`), `**$1**`},
}

// Matched against lowercased, trimmed lines.
var metadataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#+\s*(abstract|keywords?|authors?|affiliations?|correspondence|received|accepted|published|doi|copyright|license|citation)\b`),
	regexp.MustCompile(`^\*+\s*(correspondence|email|tel|fax):`),
	regexp.MustCompile(`^(author|affiliation|email|correspondence|tel|fax|address):`),
	regexp.MustCompile(`^©\s*\d{4}`),
	regexp.MustCompile(`^published\s+by\b`),
	regexp.MustCompile(`^journal\s+of\b`),
	regexp.MustCompile(`^volume\s+\d+`),
	regexp.MustCompile(`^issue\s+\d+`),
	regexp.MustCompile(`^pages?\s+\d+`),
	regexp.MustCompile(`^e?-?issn\b`),
}

var headingPattern = regexp.MustCompile(`^#{1,6}\s+`)

// Clean runs the enabled passes in order: image placeholders, HTML tag
// conversion, metadata removal, line merging. Tables are identified last,
// over the final text, so their line spans index the text callers see.
// Clean is total: any string is valid input and re-cleaning already-clean
// text changes nothing.
func (c *Cleaner) Clean(raw string) CleanedDocument {
	counts := map[string]int{
		"images":         0,
		"html_tags":      0,
		"metadata_lines": 0,
		"merged_lines":   0,
	}

	text := raw
	if c.opts.RemoveImages {
		text, counts["images"] = removeImages(text)
	}
	if c.opts.ConvertHTML {
		text, counts["html_tags"] = convertHTMLTags(text)
	}
	if c.opts.RemoveMetadata {
		text, counts["metadata_lines"] = removeMetadata(text)
	}
	if c.opts.MergeLines {
		text, counts["merged_lines"] = mergeWrappedLines(text)
	}

	var tables []TableBlock
	if c.opts.ExtractTables {
		tables = IdentifyTables(text)
	}

	return CleanedDocument{
		Text:              text,
		Tables:            tables,
		RemovedCounts:     counts,
		OriginalLineCount: countLines(raw),
		CleanedLineCount:  countLines(text),
	}
}

func removeImages(text string) (string, int) {
	n := len(imagePattern.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return imagePattern.ReplaceAllString(text, ""), n
}

func convertHTMLTags(text string) (string, int) {
	total := 0
	for _, rule := range htmlRules {
		n := len(rule.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		total += n
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return text, total
}

// removeMetadata drops author/journal boilerplate lines and the blocks they
// open (an abstract or keywords header swallows following lines until a
// blank line or the next heading). Lines inside table regions are never
// touched.
func removeMetadata(text string) (string, int) {
	protected := tableLineSet(text)
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	removed := 0
	inBlock := false

	for i, line := range lines {
		if protected[i] {
			inBlock = false
			kept = append(kept, line)
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(line))
		isMeta := false
		for _, p := range metadataPatterns {
			if p.MatchString(lower) {
				isMeta = true
				break
			}
		}
		if isMeta {
			inBlock = true
			removed++
			continue
		}
		if inBlock {
			if strings.TrimSpace(line) == "" || headingPattern.MatchString(line) {
				inBlock = false
				kept = append(kept, line)
			} else {
				removed++
			}
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), removed
}

// mergeWrappedLines joins hard-wrapped body lines into one line per
// paragraph and undoes end-of-line hyphenation. Headings, blank lines and
// table rows keep their own lines. The count is the number of joins.
func mergeWrappedLines(text string) (string, int) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	merges := 0
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
			out = append(out, line)
		case headingPattern.MatchString(line) || strings.Contains(trimmed, "|"):
			flush()
			out = append(out, line)
		default:
			if buf.Len() == 0 {
				buf.WriteString(trimmed)
				continue
			}
			merges++
			if dehyphenated, ok := stripWrapHyphen(buf.String()); ok {
				buf.Reset()
				buf.WriteString(dehyphenated)
			} else {
				buf.WriteByte(' ')
			}
			buf.WriteString(trimmed)
		}
	}
	flush()
	return strings.Join(out, "\n"), merges
}

// stripWrapHyphen removes a trailing hyphen that wraps a word across a line
// break. A hyphen after a non-letter (e.g. a citation range "[3-") stays.
func stripWrapHyphen(s string) (string, bool) {
	if len(s) < 2 || !strings.HasSuffix(s, "-") {
		return s, false
	}
	prev := s[len(s)-2]
	if (prev >= 'a' && prev <= 'z') || (prev >= 'A' && prev <= 'Z') {
		return s[:len(s)-1], true
	}
	return s, false
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
