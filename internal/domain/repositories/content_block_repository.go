package repositories

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// ContentBlockFilter narrows a block listing. Empty fields are ignored.
type ContentBlockFilter struct {
	Section   string
	Specialty string
}

// ContentBlockRepository defines the interface for content block data operations
type ContentBlockRepository interface {
	// Create inserts a block
	Create(ctx context.Context, block *entities.ContentBlock) error

	// GetByID retrieves a block by ID
	GetByID(ctx context.Context, id string) (*entities.ContentBlock, error)

	// ListByPage retrieves a page's blocks ordered by order_index
	ListByPage(ctx context.Context, page string, filter ContentBlockFilter) ([]*entities.ContentBlock, error)

	// ListByPages retrieves the blocks of several pages in one query, keyed by page
	ListByPages(ctx context.Context, pages []string) (map[string][]*entities.ContentBlock, error)

	// ListAll retrieves every block, used by export and reindexing
	ListAll(ctx context.Context) ([]*entities.ContentBlock, error)

	// MaxOrderIndex returns the highest order_index on the page and whether any block exists
	MaxOrderIndex(ctx context.Context, page string) (int, bool, error)

	// Update applies a partial update and returns the stored block
	Update(ctx context.Context, id string, patch entities.ContentBlockPatch) (*entities.ContentBlock, error)

	// SwapOrder writes both blocks' order_index in one transaction
	SwapOrder(ctx context.Context, a, b *entities.ContentBlock) error

	// Delete removes a block by ID
	Delete(ctx context.Context, id string) error

	// SearchText matches title/content/name with a case-insensitive substring
	SearchText(ctx context.Context, query string, limit int) ([]*entities.ContentBlock, error)
}
