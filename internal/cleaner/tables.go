package cleaner

import (
	"regexp"
	"strings"
)

// TableBlock is a Markdown pipe table lifted out of the document so the
// sentence extractor can skip its rows. Line numbers are 0-based indices
// into the cleaned text.
type TableBlock struct {
	Content   string   `json:"content"`
	Headers   []string `json:"headers"`
	Rows      int      `json:"rows"`
	Columns   int      `json:"columns"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
}

// A separator row like |---|---| or | :---: | ---- |.
var tableSeparatorPattern = regexp.MustCompile(`^\|?[\s\-:|]+\|[\s\-:|]+`)

// IdentifyTables finds pipe tables: a header row, a separator row, and any
// following rows containing a pipe. Rows excludes the header and separator.
func IdentifyTables(text string) []TableBlock {
	lines := strings.Split(text, "\n")
	var tables []TableBlock

	for i := 1; i < len(lines); i++ {
		if !tableSeparatorPattern.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		header := strings.TrimSpace(lines[i-1])
		if !strings.Contains(header, "|") {
			continue
		}
		headers := splitTableRow(header)
		end := i + 1
		for end < len(lines) && strings.Contains(lines[end], "|") {
			end++
		}
		end--

		tables = append(tables, TableBlock{
			Content:   strings.Join(lines[i-1:end+1], "\n"),
			Headers:   headers,
			Rows:      end - i,
			Columns:   len(headers),
			StartLine: i - 1,
			EndLine:   end,
		})
		i = end
	}
	return tables
}

// tableLineSet marks every line covered by a table region.
func tableLineSet(text string) map[int]bool {
	set := make(map[int]bool)
	for _, t := range IdentifyTables(text) {
		for ln := t.StartLine; ln <= t.EndLine; ln++ {
			set[ln] = true
		}
	}
	return set
}

func splitTableRow(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			cells = append(cells, s)
		}
	}
	return cells
}
