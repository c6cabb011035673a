package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/todo-api/internal/apperr"
	"github.com/redmonkez12/todo-api/internal/database"
)

var (
	ErrNotFound      = apperr.NotFound("item not found")
	ErrDuplicateID   = apperr.Conflict("item id already exists")
	ErrOwnerNotFound = apperr.Validation("owner does not exist")
)

// Repository handles item persistence. Every lookup takes an ownerID; an
// empty ownerID means unscoped (administrative) access.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// ListIDs returns every item id in the store, regardless of owner
func (r *Repository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*database.Item)(nil)).
		Column("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list item ids: %w", err)
	}
	return ids, nil
}

// Exists checks an id globally, regardless of owner
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.Item)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return exists, nil
}

// Create inserts a new item. A collision on the primary key is reported as
// ErrDuplicateID so callers can allocate a new id and retry.
func (r *Repository) Create(ctx context.Context, it *Item) error {
	_, err := r.db.NewInsert().
		Model(mapModelToDBItem(it)).
		Exec(ctx)

	if err != nil {
		switch {
		case database.IsUniqueViolation(err, database.ConstraintItemsPK):
			return ErrDuplicateID
		case database.IsForeignKeyViolation(err, database.ConstraintItemsOwnerFK):
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item. Items of another owner are reported as ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id, ownerID string) (*Item, error) {
	dbItem := new(database.Item)
	err := r.db.NewSelect().
		Model(dbItem).
		ApplyQueryBuilder(scoped(id, ownerID)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return mapDBItemToModel(dbItem), nil
}

// Update applies the non-nil fields of c in one statement and returns the
// row as stored afterwards
func (r *Repository) Update(ctx context.Context, id, ownerID string, c Changes) (*Item, error) {
	if c.IsEmpty() {
		return r.GetByID(ctx, id, ownerID)
	}

	dbItem := new(database.Item)
	q := r.db.NewUpdate().
		Model(dbItem).
		ApplyQueryBuilder(scoped(id, ownerID))

	if c.Title != nil {
		q = q.Set("title = ?", *c.Title)
	}
	if c.Description != nil {
		q = q.Set("description = ?", *c.Description)
	}
	if c.Status != nil {
		q = q.Set("status = ?", string(*c.Status))
	}

	if err := q.Returning("*").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if dbItem.ID == "" {
		return nil, ErrNotFound
	}

	return mapDBItemToModel(dbItem), nil
}

// Delete removes an item and returns its state before deletion
func (r *Repository) Delete(ctx context.Context, id, ownerID string) (*Item, error) {
	dbItem := new(database.Item)
	err := r.db.NewDelete().
		Model(dbItem).
		ApplyQueryBuilder(scoped(id, ownerID)).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	if dbItem.ID == "" {
		return nil, ErrNotFound
	}

	return mapDBItemToModel(dbItem), nil
}

// List returns the items matching f, ordered by f.Sort with id as tie-breaker
func (r *Repository) List(ctx context.Context, f Filter) ([]Item, error) {
	var rows []database.Item
	q := r.db.NewSelect().Model(&rows)

	if f.OwnerID != "" {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	dir := "ASC"
	if f.Sort.Desc {
		dir = "DESC"
	}
	q = q.OrderExpr("? "+dir, bun.Ident(f.Sort.column()))
	if f.Sort.column() != sortColumns[SortByID] {
		q = q.OrderExpr("? ASC", bun.Ident("id"))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for i := range rows {
		items = append(items, *mapDBItemToModel(&rows[i]))
	}
	return items, nil
}

// scoped filters by id and, when ownerID is set, by owner
func scoped(id, ownerID string) func(bun.QueryBuilder) bun.QueryBuilder {
	return func(q bun.QueryBuilder) bun.QueryBuilder {
		q = q.Where("id = ?", id)
		if ownerID != "" {
			q = q.Where("user_id = ?", ownerID)
		}
		return q
	}
}

func mapModelToDBItem(it *Item) *database.Item {
	return &database.Item{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Status:      string(it.Status),
		Timestamp:   it.Timestamp,
		UserID:      it.UserID,
	}
}

// mapDBItemToModel converts database model to domain model
func mapDBItemToModel(dbi *database.Item) *Item {
	return &Item{
		ID:          dbi.ID,
		Title:       dbi.Title,
		Description: dbi.Description,
		Status:      Status(dbi.Status),
		Timestamp:   dbi.Timestamp,
		UserID:      dbi.UserID,
	}
}
