// Package slot finds template heading blocks in an archive page and attaches
// images under them.
package slot

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
)

// maxPages bounds the children scan.
const maxPages = 100

// Populator locates heading_2 slots by keyword and appends image blocks to them.
type Populator struct {
	store domain.DocumentStore
}

// New creates a Populator backed by the given document store.
func New(store domain.DocumentStore) *Populator {
	return &Populator{store: store}
}

// FindHeadingBlock returns the ID of the first heading_2 child of documentID
// whose first text run contains keyword. found is false when no heading
// matches; that is not an error. All pages of children are scanned.
func (p *Populator) FindHeadingBlock(ctx context.Context, documentID, keyword string) (blockID string, found bool, err error) {
	if keyword == "" {
		return "", false, fmt.Errorf("%w: slot keyword is empty", domain.ErrValidation)
	}

	cursor := ""
	for range maxPages {
		page, err := p.store.ListChildren(ctx, documentID, cursor)
		if err != nil {
			return "", false, fmt.Errorf("list children of %s: %w", documentID, err)
		}

		if id, ok := matchHeading(page.Blocks, keyword); ok {
			return id, true, nil
		}

		if !page.HasMore || page.NextCursor == "" {
			return "", false, nil
		}
		cursor = page.NextCursor
	}
	return "", false, fmt.Errorf("list children of %s: more than %d pages", documentID, maxPages)
}

// AttachImage appends one external image block as the last child of blockID.
func (p *Populator) AttachImage(ctx context.Context, blockID, imageURL string) error {
	if err := p.store.AppendChildren(ctx, blockID, []domain.Block{domain.ExternalImage(imageURL)}); err != nil {
		return fmt.Errorf("attach image to %s: %w", blockID, err)
	}
	return nil
}

func matchHeading(blocks []domain.Block, keyword string) (string, bool) {
	for _, b := range blocks {
		if b.Type != domain.BlockTypeHeading2 {
			continue
		}
		text, ok := b.FirstRun()
		if ok && strings.Contains(text, keyword) {
			return b.ID, true
		}
	}
	return "", false
}
