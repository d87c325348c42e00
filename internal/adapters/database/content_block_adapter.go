package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const contentBlocksTable = "content_blocks"

var contentBlockColumns = []interface{}{
	"id", "page", "section", "specialty", "name", "title", "content",
	"image_url", "order_index", "metadata", "created_at", "updated_at",
}

type contentBlockRow struct {
	ID         string         `db:"id"`
	Page       string         `db:"page"`
	Section    string         `db:"section"`
	Specialty  sql.NullString `db:"specialty"`
	Name       string         `db:"name"`
	Title      sql.NullString `db:"title"`
	Content    sql.NullString `db:"content"`
	ImageURL   sql.NullString `db:"image_url"`
	OrderIndex int            `db:"order_index"`
	Metadata   []byte         `db:"metadata"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r *contentBlockRow) toEntity() *entities.ContentBlock {
	block := &entities.ContentBlock{
		ID:         r.ID,
		Page:       r.Page,
		Section:    r.Section,
		Specialty:  r.Specialty.String,
		Name:       r.Name,
		Title:      r.Title.String,
		Content:    r.Content.String,
		ImageURL:   r.ImageURL.String,
		OrderIndex: r.OrderIndex,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &block.Metadata)
	}
	return block
}

func encodeMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// ContentBlockAdapter implements the ContentBlockRepository interface
type ContentBlockAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewContentBlockAdapter creates a new content block adapter
func NewContentBlockAdapter(client *postgres.Client) repositories.ContentBlockRepository {
	return &ContentBlockAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a block
func (a *ContentBlockAdapter) Create(ctx context.Context, block *entities.ContentBlock) error {
	metadata, err := encodeMetadata(block.Metadata)
	if err != nil {
		return apperrors.NewValidationError("metadata must be a JSON object")
	}

	record := goqu.Record{
		"id":          block.ID,
		"page":        block.Page,
		"section":     block.Section,
		"specialty":   nullIfEmpty(block.Specialty),
		"name":        block.Name,
		"title":       block.Title,
		"content":     block.Content,
		"image_url":   block.ImageURL,
		"order_index": block.OrderIndex,
		"metadata":    string(metadata),
		"created_at":  block.CreatedAt,
		"updated_at":  block.UpdatedAt,
	}

	query, args, err := a.db.Insert(contentBlocksTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create content block", err)
	}
	return nil
}

// GetByID retrieves a block by ID
func (a *ContentBlockAdapter) GetByID(ctx context.Context, id string) (*entities.ContentBlock, error) {
	query, args, err := a.db.Select(contentBlockColumns...).
		From(contentBlocksTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row contentBlockRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("content block with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get content block", err)
	}
	return row.toEntity(), nil
}

// ListByPage retrieves a page's blocks ordered by order_index
func (a *ContentBlockAdapter) ListByPage(ctx context.Context, page string, filter repositories.ContentBlockFilter) ([]*entities.ContentBlock, error) {
	where := goqu.Ex{"page": page}
	if filter.Section != "" {
		where["section"] = filter.Section
	}
	if filter.Specialty != "" {
		where["specialty"] = filter.Specialty
	}

	query, args, err := a.db.Select(contentBlockColumns...).
		From(contentBlocksTable).
		Where(where).
		Order(goqu.I("order_index").Asc(), goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.selectBlocks(ctx, query, args...)
}

// ListByPages retrieves the blocks of several pages in one query, keyed by page
func (a *ContentBlockAdapter) ListByPages(ctx context.Context, pages []string) (map[string][]*entities.ContentBlock, error) {
	out := make(map[string][]*entities.ContentBlock, len(pages))
	if len(pages) == 0 {
		return out, nil
	}

	query, args, err := a.db.Select(contentBlockColumns...).
		From(contentBlocksTable).
		Where(goqu.Ex{"page": pages}).
		Order(goqu.I("page").Asc(), goqu.I("order_index").Asc(), goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	blocks, err := a.selectBlocks(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		out[b.Page] = append(out[b.Page], b)
	}
	return out, nil
}

// ListAll retrieves every block
func (a *ContentBlockAdapter) ListAll(ctx context.Context) ([]*entities.ContentBlock, error) {
	query, args, err := a.db.Select(contentBlockColumns...).
		From(contentBlocksTable).
		Order(goqu.I("page").Asc(), goqu.I("order_index").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.selectBlocks(ctx, query, args...)
}

// MaxOrderIndex returns the highest order_index on the page and whether any block exists
func (a *ContentBlockAdapter) MaxOrderIndex(ctx context.Context, page string) (int, bool, error) {
	query, args, err := a.db.Select(goqu.MAX("order_index")).
		From(contentBlocksTable).
		Where(goqu.Ex{"page": page}).
		ToSQL()
	if err != nil {
		return 0, false, apperrors.NewInternalError("failed to build query", err)
	}

	var max sql.NullInt64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&max); err != nil {
		return 0, false, apperrors.NewInternalError("failed to read max order index", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

// Update applies a partial update and returns the stored block
func (a *ContentBlockAdapter) Update(ctx context.Context, id string, patch entities.ContentBlockPatch) (*entities.ContentBlock, error) {
	record := goqu.Record{"updated_at": time.Now()}
	for column, value := range patch.Fields() {
		switch column {
		case "metadata":
			metadata, err := encodeMetadata(patch.Metadata)
			if err != nil {
				return nil, apperrors.NewValidationError("metadata must be a JSON object")
			}
			record[column] = string(metadata)
		case "specialty":
			record[column] = nullIfEmpty(value.(string))
		default:
			record[column] = value
		}
	}

	query, args, err := a.db.Update(contentBlocksTable).
		Set(record).
		Where(goqu.Ex{"id": id}).
		Returning(contentBlockColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	var row contentBlockRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("content block with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update content block", err)
	}
	return row.toEntity(), nil
}

// SwapOrder writes both blocks' order_index in one transaction
func (a *ContentBlockAdapter) SwapOrder(ctx context.Context, first, second *entities.ContentBlock) error {
	now := time.Now()
	return a.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, b := range []*entities.ContentBlock{first, second} {
			if err := a.setOrderIndex(ctx, tx, b.ID, b.OrderIndex, now); err != nil {
				return err
			}
			b.UpdatedAt = now
		}
		return nil
	})
}

func (a *ContentBlockAdapter) setOrderIndex(ctx context.Context, tx *sqlx.Tx, id string, idx int, now time.Time) error {
	return updateOrderIndex(ctx, a.db, tx, contentBlocksTable, "content block", id, idx, now)
}

// Delete removes a block by ID
func (a *ContentBlockAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.db, a.client, contentBlocksTable, "content block", id)
}

// SearchText matches title/content/name with a case-insensitive substring
func (a *ContentBlockAdapter) SearchText(ctx context.Context, q string, limit int) ([]*entities.ContentBlock, error) {
	pattern := "%" + q + "%"
	query, args, err := a.db.Select(contentBlockColumns...).
		From(contentBlocksTable).
		Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("content").ILike(pattern),
			goqu.C("name").ILike(pattern),
		)).
		Order(goqu.I("updated_at").Desc()).
		Limit(uint(clampLimit(limit))).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}
	return a.selectBlocks(ctx, query, args...)
}

func (a *ContentBlockAdapter) selectBlocks(ctx context.Context, query string, args ...interface{}) ([]*entities.ContentBlock, error) {
	var rows []contentBlockRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list content blocks", err)
	}
	blocks := make([]*entities.ContentBlock, 0, len(rows))
	for i := range rows {
		blocks = append(blocks, rows[i].toEntity())
	}
	return blocks, nil
}
