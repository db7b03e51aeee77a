package jira

// Atlassian Document Format wire types, covering the subset the
// service reads and writes: paragraphs, headings, bullet lists, and
// text runs.

// Document is the top-level ADF node used for issue descriptions.
type Document struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

// Node is a single ADF content node. Fields not relevant to a node
// type stay zero and are omitted from the wire form.
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// NewDocument wraps nodes in a version-1 doc.
func NewDocument(nodes ...Node) Document {
	return Document{Type: "doc", Version: 1, Content: nodes}
}

// Text builds a text run.
func Text(text string) Node {
	return Node{Type: "text", Text: text}
}

// Paragraph builds a paragraph with a single text run.
func Paragraph(text string) Node {
	return Node{Type: "paragraph", Content: []Node{Text(text)}}
}

// Heading builds a heading of the given level.
func Heading(level int, text string) Node {
	return Node{
		Type:    "heading",
		Attrs:   map[string]any{"level": level},
		Content: []Node{Text(text)},
	}
}

// BulletList builds a bulleted list with one text item per entry.
func BulletList(items ...string) Node {
	nodes := make([]Node, len(items))
	for i, item := range items {
		nodes[i] = Node{
			Type:    "listItem",
			Content: []Node{Paragraph(item)},
		}
	}
	return Node{Type: "bulletList", Content: nodes}
}

// PlainText extracts the description preview the service exposes for
// a ticket: the first text run of the document's first block. Nested
// structure beyond that is ignored.
func (d *Document) PlainText() string {
	if d == nil || len(d.Content) == 0 {
		return ""
	}
	first := d.Content[0]
	if len(first.Content) == 0 {
		return ""
	}
	return first.Content[0].Text
}
