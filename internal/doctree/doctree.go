// Package doctree builds a heading-derived section hierarchy over cleaned
// Markdown. Nodes live in a flat arena and reference each other by index,
// so the tree has no ownership cycles and trivially serializes.
package doctree

import (
	"fmt"
	"regexp"
	"strings"
)

// Node is one section. Parent and Children hold arena indices into
// Tree.Nodes; Parent is -1 only for the synthetic root.
type Node struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Level     int    `json:"level"` // heading depth, 0 for the root
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Parent    int    `json:"parent"`
	Children  []int  `json:"children"`
}

// Tree is the arena plus a document-order index of real sections.
// Nodes[0] is always the synthetic root owning every top-level section.
type Tree struct {
	Nodes []Node `json:"nodes"`
	Flat  []int  `json:"flat"` // document order, root excluded
}

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Build scans the text line by line. A heading of depth d closes every open
// section at depth >= d and attaches under the nearest strictly-shallower
// open ancestor, so non-contiguous depths (a level-3 heading right after a
// level-1) still resolve deterministically. Build never fails: any string,
// including the empty one, yields a tree with at least the root.
func Build(text string) *Tree {
	lines := strings.Split(text, "\n")
	lastLine := len(lines) - 1

	t := &Tree{
		Nodes: []Node{{
			ID:        "root",
			Title:     "Document Root",
			Level:     0,
			StartLine: 0,
			EndLine:   lastLine,
			Parent:    -1,
		}},
	}

	// Open sections, as arena indices. The root never closes.
	stack := []int{0}
	// Per-level ID counters; opening level d resets every deeper level.
	var counters [7]int

	for lineIdx, line := range lines {
		m := headingPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		level := len(m[1])
		title := strings.TrimSpace(m[2])

		counters[level]++
		for l := level + 1; l < len(counters); l++ {
			counters[l] = 0
		}

		for len(stack) > 1 && t.Nodes[stack[len(stack)-1]].Level >= level {
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			t.Nodes[closed].EndLine = lineIdx - 1
		}
		parent := stack[len(stack)-1]

		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{
			ID:        sectionID(level, counters[level]),
			Title:     title,
			Level:     level,
			StartLine: lineIdx,
			EndLine:   lastLine,
			Parent:    parent,
		})
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
		t.Flat = append(t.Flat, idx)
		stack = append(stack, idx)
	}

	return t
}

func sectionID(level, n int) string {
	return fmt.Sprintf("section_%d_%d", level, n)
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return &t.Nodes[0]
}

// Find returns the arena index of the first document-order section with the
// given title and level, or -1.
func (t *Tree) Find(title string, level int) int {
	for _, idx := range t.Flat {
		n := &t.Nodes[idx]
		if n.Level == level && n.Title == title {
			return idx
		}
	}
	return -1
}

// ByID returns the arena index of the section with the given ID, or -1.
func (t *Tree) ByID(id string) int {
	for _, idx := range t.Flat {
		if t.Nodes[idx].ID == id {
			return idx
		}
	}
	return -1
}

// PathTo returns the ordered titles from the root down to node idx, root
// excluded. PathTo(0) is empty.
func (t *Tree) PathTo(idx int) []string {
	var rev []string
	for i := idx; i > 0; i = t.Nodes[i].Parent {
		rev = append(rev, t.Nodes[i].Title)
	}
	path := make([]string, len(rev))
	for i, title := range rev {
		path[len(rev)-1-i] = title
	}
	return path
}
