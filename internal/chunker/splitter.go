package chunker

import "strings"

// Separator preference: paragraph, line, sentence, word, then raw
// characters as the last resort.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// splitText recursively splits text into chunks of at most ~size
// characters. When a chunk flushes, the tail of it (up to overlap
// characters, cut at a word boundary) seeds the next chunk so neighboring
// chunks share context.
func splitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	for _, sep := range separators {
		if sep == "" {
			return hardSplit(text, size, overlap)
		}

		parts := strings.Split(text, sep)
		if len(parts) == 1 {
			continue
		}

		current := ""
		for _, part := range parts {
			candidate := part
			if current != "" {
				candidate = current + sep + part
			}
			if len(candidate) > size && current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
				if tail := overlapTail(current, overlap); tail != "" {
					current = tail + " " + part
				} else {
					current = part
				}
			} else {
				current = candidate
			}
		}
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}

		if len(chunks) > 1 {
			break
		}
		chunks = chunks[:0]
	}

	// A paragraph larger than size flushes whole; re-split it at the finer
	// separators.
	var final []string
	for _, c := range mergeSmall(chunks, size) {
		if len(c) > size {
			final = append(final, splitText(c, size, overlap)...)
		} else {
			final = append(final, c)
		}
	}
	return final
}

// hardSplit cuts by character count with a fixed stride. Only reached when
// the text has no separator at all.
func hardSplit(text string, size, overlap int) []string {
	stride := size - overlap
	if stride <= 0 {
		stride = size
	}
	var chunks []string
	for i := 0; i < len(text); i += stride {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

// overlapTail returns the last whole words of text totaling at most n
// characters.
func overlapTail(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return ""
	}
	tail := text[len(text)-n:]
	if cut := strings.IndexByte(tail, ' '); cut >= 0 {
		tail = tail[cut+1:]
	}
	return strings.TrimSpace(tail)
}

// mergeSmall joins adjacent fragments that together still fit in one
// chunk, so separator-dense text does not shatter into slivers.
func mergeSmall(chunks []string, size int) []string {
	var merged []string
	for _, c := range chunks {
		if c == "" {
			continue
		}
		if len(merged) > 0 && len(merged[len(merged)-1])+len(c) < size {
			merged[len(merged)-1] += " " + c
		} else {
			merged = append(merged, c)
		}
	}
	return merged
}
