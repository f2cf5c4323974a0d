package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files as a one-page document.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimRight(sb.String(), "\n")
	return &Document{
		Title:    baseTitle(filename),
		Markdown: text,
		Pages:    singlePage(text),
	}, nil
}
