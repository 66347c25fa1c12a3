package domain

import (
	"context"
	"strings"
)

// Block types the service reads or writes.
const (
	BlockTypeHeading2  = "heading_2"
	BlockTypeImage     = "image"
	BlockTypeParagraph = "paragraph"
)

// publicURLBase prefixes page IDs to build a shareable link.
const publicURLBase = "https://www.notion.so/"

// RichText is one text run of a block.
type RichText struct {
	Text string `json:"text"`
}

// Block is the subset of a document block the service cares about. Blocks of
// other types are carried through with only ID and Type set.
type Block struct {
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type"`
	RichText []RichText `json:"rich_text,omitempty"`
	ImageURL string     `json:"image_url,omitempty"` // external URL, image blocks only
}

// Heading2 builds a heading_2 block with a single text run.
func Heading2(text string) Block {
	return Block{Type: BlockTypeHeading2, RichText: []RichText{{Text: text}}}
}

// ExternalImage builds an image block referencing an externally hosted URL.
func ExternalImage(url string) Block {
	return Block{Type: BlockTypeImage, ImageURL: url}
}

// FirstRun returns the text of the first rich-text run, or false when the
// block has none.
func (b Block) FirstRun() (string, bool) {
	if len(b.RichText) == 0 {
		return "", false
	}
	return b.RichText[0].Text, true
}

// ChildrenPage is one page of a block's children.
type ChildrenPage struct {
	Blocks     []Block
	NextCursor string
	HasMore    bool
}

// PropertyKind is the database column type a property value is written as.
type PropertyKind string

const (
	PropertyTitle    PropertyKind = "title"
	PropertyRichText PropertyKind = "rich_text"
	PropertyNumber   PropertyKind = "number"
	PropertyDate     PropertyKind = "date"
)

// Property is one database column value of a new page.
type Property struct {
	Name   string
	Kind   PropertyKind
	Text   string  // title, rich_text, date (YYYY-MM-DD)
	Number float64 // number
}

// DocumentStore is the document database the archive pages live in.
type DocumentStore interface {
	// CreatePage adds a page to the database and returns its opaque ID.
	CreatePage(ctx context.Context, databaseID string, props []Property, children []Block) (string, error)

	// ListChildren returns one page of blockID's direct children starting at
	// cursor ("" for the first page).
	ListChildren(ctx context.Context, blockID, cursor string) (ChildrenPage, error)

	// AppendChildren inserts blocks as trailing children of blockID.
	AppendChildren(ctx context.Context, blockID string, children []Block) error
}

// PublicURL derives the shareable page URL from a page ID.
func PublicURL(pageID string) string {
	return publicURLBase + strings.ReplaceAll(pageID, "-", "")
}

// SlotOutcome records which image slots of an archive page were populated.
type SlotOutcome struct {
	OriginalAttached bool `json:"original_attached"`
	ResultAttached   bool `json:"result_attached"`
}

// Archived identifies the page created for one observation.
type Archived struct {
	PageID string      `json:"page_id"`
	URL    string      `json:"url"`
	Slots  SlotOutcome `json:"slots"`
}
