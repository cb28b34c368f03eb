// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind identifies a top-level structural unit of a formatted response.
type BlockKind string

const (
	BlockHeading     BlockKind = "heading"
	BlockParagraph   BlockKind = "paragraph"
	BlockBulletList  BlockKind = "bullet_list"
	BlockOrderedList BlockKind = "ordered_list"
	BlockRule        BlockKind = "rule"
)

// InlineKind identifies a span of uniformly formatted text inside a block.
type InlineKind string

const (
	InlineText     InlineKind = "text"
	InlineBold     InlineKind = "bold"
	InlineCitation InlineKind = "citation"
)

// Inline is one run of text within a heading, paragraph, or list item.
//
// Text runs carry Text. Bold runs carry Children (text and citation runs).
// Citation runs carry Ref, the digits of the [n] marker exactly as they
// appeared, and URL, the resolved citation. An empty URL means the marker
// had no corresponding citation and renders as a bare bracketed number.
type Inline struct {
	Kind     InlineKind `json:"kind" yaml:"kind"`
	Text     string     `json:"text,omitempty" yaml:"text,omitempty"`
	Children []Inline   `json:"children,omitempty" yaml:"children,omitempty"`
	Ref      string     `json:"ref,omitempty" yaml:"ref,omitempty"`
	URL      string     `json:"url,omitempty" yaml:"url,omitempty"`
}

// Linked reports whether a citation run resolved to a URL.
func (i Inline) Linked() bool {
	return i.Kind == InlineCitation && i.URL != ""
}

// ListItem is the inline content of one bullet or ordered list entry.
type ListItem []Inline

// Block is a top-level node of a Document. Headings and paragraphs use
// Inlines; bullet and ordered lists use Items; rules use neither.
type Block struct {
	Kind    BlockKind  `json:"kind" yaml:"kind"`
	Inlines []Inline   `json:"inlines,omitempty" yaml:"inlines,omitempty"`
	Items   []ListItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// Document is the structured form of one evidence response. Blocks appear
// in the same top-to-bottom order as the source text.
type Document struct {
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// IsEmpty reports whether the document has no blocks.
func (d Document) IsEmpty() bool {
	return len(d.Blocks) == 0
}

// Text returns a plain text run.
func Text(s string) Inline {
	return Inline{Kind: InlineText, Text: s}
}

// Bold returns a bold run wrapping children.
func Bold(children ...Inline) Inline {
	return Inline{Kind: InlineBold, Children: children}
}

// Citation returns a citation run for marker [ref]. Pass an empty url for
// an unresolved marker.
func Citation(ref, url string) Inline {
	return Inline{Kind: InlineCitation, Ref: ref, URL: url}
}

// Heading returns a heading block.
func Heading(inlines ...Inline) Block {
	return Block{Kind: BlockHeading, Inlines: inlines}
}

// Paragraph returns a paragraph block.
func Paragraph(inlines ...Inline) Block {
	return Block{Kind: BlockParagraph, Inlines: inlines}
}

// BulletList returns a bullet list block.
func BulletList(items ...ListItem) Block {
	return Block{Kind: BlockBulletList, Items: items}
}

// OrderedList returns an ordered list block.
func OrderedList(items ...ListItem) Block {
	return Block{Kind: BlockOrderedList, Items: items}
}

// Rule returns a horizontal rule block.
func Rule() Block {
	return Block{Kind: BlockRule}
}

// Item builds a ListItem from inline runs.
func Item(inlines ...Inline) ListItem {
	return ListItem(inlines)
}
