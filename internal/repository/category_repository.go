package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/football-ticketing/internal/model"
)

// CategoryRepo encapsulates all queries against the categories table.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = "id, name, description, created_at"

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var (
		c    model.Category
		desc sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Description = stringPtr(desc)
	return &c, nil
}

// List returns every category ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns ErrCategoryNotFound when no row matches.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// Create inserts a category.  A name that is already taken yields
// ErrDuplicate, whether caught by the pre-check or by the unique index.
func (r *CategoryRepo) Create(ctx context.Context, name string, description *string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	taken, err := exists(ctx, r.db, "SELECT 1 FROM categories WHERE name = ? LIMIT 1", name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name, description) VALUES (?, ?)", name, nullString(description))
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update overwrites name and description.
func (r *CategoryRepo) Update(ctx context.Context, id int64, name string, description *string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	taken, err := exists(ctx, r.db, "SELECT 1 FROM categories WHERE name = ? AND id <> ? LIMIT 1", name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE categories SET name = ?, description = ? WHERE id = ?", name, nullString(description), id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category that no event references.  If at least one
// event still points at it ErrConflict is returned and the row stays.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	used, err := exists(ctx, r.db, "SELECT 1 FROM events WHERE category_id = ? LIMIT 1", id)
	if err != nil {
		return err
	}
	if used {
		return ErrConflict
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		// an event inserted after the check still trips the RESTRICT key
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}
