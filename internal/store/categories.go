package store

import (
	"context"
	"fmt"
	"time"

	"blogicum/internal/models"
)

const categoryColumns = `id, title, description, slug, is_published, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var created int64
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &created); err != nil {
		return nil, notFound(err)
	}
	c.CreatedAt = fromUnix(created)
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) (int64, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories(title, description, slug, is_published, created_at) VALUES(?,?,?,?,?)`,
		c.Title, c.Description, c.Slug, c.IsPublished, unix(c.CreatedAt))
	if isUnique(err, "categories.slug") {
		return 0, ErrDuplicateSlug
	}
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return c.ID, err
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug))
}

// ListCategories returns categories ordered by title. With onlyPublished
// hidden categories are skipped.
func (s *Store) ListCategories(ctx context.Context, onlyPublished bool) ([]models.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if onlyPublished {
		q += ` WHERE is_published = 1`
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY title, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) SetCategoryPublished(ctx context.Context, slug string, published bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET is_published = ? WHERE slug = ?`, published, slug)
	if err != nil {
		return fmt.Errorf("update category %q: %w", slug, err)
	}
	return affected(res)
}

// DeleteCategory removes the category; its posts keep existing with no
// category.
func (s *Store) DeleteCategory(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete category %q: %w", slug, err)
	}
	return affected(res)
}
