package notion

import "github.com/couchcryptid/sunspot-archive-service/internal/domain"

// Notion API request and response types. Only the fields the service reads
// or writes are modelled.

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent                   `json:"parent"`
	Properties map[string]propertyValue `json:"properties"`
	Children   []block                  `json:"children,omitempty"`
}

type appendChildrenRequest struct {
	Children []block `json:"children"`
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type childrenResponse struct {
	Results    []block `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

type propertyValue struct {
	Title    []richText `json:"title,omitempty"`
	RichText []richText `json:"rich_text,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Date     *dateValue `json:"date,omitempty"`
}

type dateValue struct {
	Start string `json:"start"`
}

type richText struct {
	Type      string       `json:"type,omitempty"`
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type block struct {
	Object    string     `json:"object,omitempty"`
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Heading2  *textBlock `json:"heading_2,omitempty"`
	Paragraph *textBlock `json:"paragraph,omitempty"`
	Image     *image     `json:"image,omitempty"`
}

type textBlock struct {
	RichText []richText `json:"rich_text"`
}

type image struct {
	Type     string    `json:"type"`
	External *external `json:"external,omitempty"`
}

type external struct {
	URL string `json:"url"`
}

func textRuns(text string) []richText {
	return []richText{{Text: &textContent{Content: text}}}
}

func encodeProperties(props []domain.Property) map[string]propertyValue {
	out := make(map[string]propertyValue, len(props))
	for _, p := range props {
		switch p.Kind {
		case domain.PropertyTitle:
			out[p.Name] = propertyValue{Title: textRuns(p.Text)}
		case domain.PropertyRichText:
			out[p.Name] = propertyValue{RichText: textRuns(p.Text)}
		case domain.PropertyNumber:
			n := p.Number
			out[p.Name] = propertyValue{Number: &n}
		case domain.PropertyDate:
			out[p.Name] = propertyValue{Date: &dateValue{Start: p.Text}}
		}
	}
	return out
}

func encodeBlock(b domain.Block) block {
	out := block{Object: "block", Type: b.Type}
	switch b.Type {
	case domain.BlockTypeHeading2:
		out.Heading2 = &textBlock{RichText: encodeRuns(b.RichText)}
	case domain.BlockTypeParagraph:
		out.Paragraph = &textBlock{RichText: encodeRuns(b.RichText)}
	case domain.BlockTypeImage:
		out.Image = &image{Type: "external", External: &external{URL: b.ImageURL}}
	}
	return out
}

func encodeRuns(runs []domain.RichText) []richText {
	out := make([]richText, 0, len(runs))
	for _, r := range runs {
		out = append(out, richText{Type: "text", Text: &textContent{Content: r.Text}})
	}
	return out
}

func decodeBlock(b block) domain.Block {
	out := domain.Block{ID: b.ID, Type: b.Type}
	switch {
	case b.Heading2 != nil:
		out.RichText = decodeRuns(b.Heading2.RichText)
	case b.Paragraph != nil:
		out.RichText = decodeRuns(b.Paragraph.RichText)
	case b.Image != nil && b.Image.External != nil:
		out.ImageURL = b.Image.External.URL
	}
	return out
}

// decodeRuns prefers text.content and falls back to plain_text for
// non-text runs such as mentions.
func decodeRuns(runs []richText) []domain.RichText {
	if len(runs) == 0 {
		return nil
	}
	out := make([]domain.RichText, 0, len(runs))
	for _, r := range runs {
		text := r.PlainText
		if r.Text != nil {
			text = r.Text.Content
		}
		out = append(out, domain.RichText{Text: text})
	}
	return out
}
