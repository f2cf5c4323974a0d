// Package extract turns a cleaned document into ordered sentences, each
// carrying the structural location (section path, paragraph, sentence, line
// span, page reference) a citation needs to jump back to its source.
package extract

import (
	"regexp"
	"strings"

	"github.com/paperloc/paperloc/internal/cleaner"
	"github.com/paperloc/paperloc/internal/doctree"
)

const (
	TypeText  = "text"
	TypeTable = "table"

	// DefaultMinWords drops fragments like stray labels or axis titles.
	DefaultMinWords = 3
)

// Location pins a sentence inside its document. Line numbers are 0-based
// indices into the cleaned text; LineStart <= LineEnd always holds.
type Location struct {
	SectionPath    []string `json:"section_path"`
	SectionID      string   `json:"section_id"`
	ParagraphIndex int      `json:"paragraph_index"`
	SentenceIndex  int      `json:"sentence_index"`
	LineStart      int      `json:"line_start"`
	LineEnd        int      `json:"line_end"`
	PageReference  string   `json:"page_reference,omitempty"`
}

// Sentence is one extracted unit. Identity is structural (document plus
// location), never content-based: two sentences may read identically.
type Sentence struct {
	Text      string   `json:"text"`
	Type      string   `json:"type"` // TypeText or TypeTable
	Location  Location `json:"location"`
	HasNumber bool     `json:"has_number"`
	HasUnit   bool     `json:"has_unit"`
}

// Stats counts what a pass kept and dropped. Dropped candidates are not
// errors.
type Stats struct {
	Sentences    int `json:"sentences"`
	Tables       int `json:"tables"`
	DroppedShort int `json:"dropped_short"`
}

// Extractor walks paragraphs with a section stack synchronized to the tree.
type Extractor struct {
	minWords int
}

func New(minWords int) *Extractor {
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	return &Extractor{minWords: minWords}
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	pagePattern    = regexp.MustCompile(`_page_(\d+)`)
)

// Extract produces sentences in document order. Paragraphs are blank-line
// delimited; paragraph indices reset at each section, sentence indices at
// each paragraph. Table regions from the cleaned document are emitted as
// single TypeTable entries and never sentence-split. The tree must have
// been built from doc.Text.
func (e *Extractor) Extract(doc cleaner.CleanedDocument, tree *doctree.Tree) ([]Sentence, Stats) {
	lines := strings.Split(doc.Text, "\n")
	if doc.Text == "" {
		lines = nil
	}

	tableAt := make(map[int]cleaner.TableBlock, len(doc.Tables))
	for _, tb := range doc.Tables {
		tableAt[tb.StartLine] = tb
	}

	var (
		out       []Sentence
		stats     Stats
		stack     = []int{0} // arena indices, root at the bottom
		nextFlat  = 0        // next heading in tree.Flat
		paraIndex = 0        // resets when a section opens
		buf       []string
		bufStart  = 0
	)

	flush := func(endLine int) {
		if len(buf) == 0 {
			return
		}
		paragraph := strings.Join(buf, " ")
		buf = nil

		kept := 0
		for _, text := range SplitSentences(paragraph) {
			if len(strings.Fields(text)) < e.minWords {
				stats.DroppedShort++
				continue
			}
			hasNumber, hasUnit := DetectNumbersAndUnits(text)
			out = append(out, Sentence{
				Text:      text,
				Type:      TypeText,
				Location:  e.location(tree, stack, paraIndex, kept, bufStart, endLine, text),
				HasNumber: hasNumber,
				HasUnit:   hasUnit,
			})
			kept++
			stats.Sentences++
		}
		paraIndex++
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if tb, ok := tableAt[i]; ok {
			flush(i - 1)
			out = append(out, Sentence{
				Text:     tb.Content,
				Type:     TypeTable,
				Location: e.location(tree, stack, max(paraIndex-1, 0), 0, tb.StartLine, tb.EndLine, ""),
			})
			stats.Tables++
			i = tb.EndLine
			continue
		}

		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush(i - 1)
			level := len(m[1])
			// Headings appear in the same order the tree recorded them.
			if nextFlat < len(tree.Flat) {
				idx := tree.Flat[nextFlat]
				nextFlat++
				for len(stack) > 1 && tree.Nodes[stack[len(stack)-1]].Level >= level {
					stack = stack[:len(stack)-1]
				}
				stack = append(stack, idx)
			}
			paraIndex = 0
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush(i - 1)
			continue
		}

		if len(buf) == 0 {
			bufStart = i
		}
		buf = append(buf, strings.TrimSpace(line))
	}
	flush(len(lines) - 1)

	return out, stats
}

func (e *Extractor) location(tree *doctree.Tree, stack []int, para, sent, lineStart, lineEnd int, text string) Location {
	top := stack[len(stack)-1]
	if lineEnd < lineStart {
		lineEnd = lineStart
	}
	loc := Location{
		SectionPath:    tree.PathTo(top),
		SectionID:      tree.Nodes[top].ID,
		ParagraphIndex: para,
		SentenceIndex:  sent,
		LineStart:      lineStart,
		LineEnd:        lineEnd,
	}
	if m := pagePattern.FindStringSubmatch(text); m != nil {
		loc.PageReference = "page_" + m[1]
	}
	return loc
}
