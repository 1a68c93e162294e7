package store

import (
	"context"
	"fmt"
	"time"

	"blogicum/internal/models"
)

func scanLocation(row interface{ Scan(...any) error }) (*models.Location, error) {
	var l models.Location
	var created int64
	if err := row.Scan(&l.ID, &l.Name, &l.IsPublished, &created); err != nil {
		return nil, notFound(err)
	}
	l.CreatedAt = fromUnix(created)
	return &l, nil
}

func (s *Store) CreateLocation(ctx context.Context, l *models.Location) (int64, error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO locations(name, is_published, created_at) VALUES(?,?,?)`,
		l.Name, l.IsPublished, unix(l.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	l.ID, err = res.LastInsertId()
	return l.ID, err
}

func (s *Store) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	return scanLocation(s.db.QueryRowContext(ctx,
		`SELECT id, name, is_published, created_at FROM locations WHERE id = ?`, id))
}

func (s *Store) ListLocations(ctx context.Context, onlyPublished bool) ([]models.Location, error) {
	q := `SELECT id, name, is_published, created_at FROM locations`
	if onlyPublished {
		q += ` WHERE is_published = 1`
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// DeleteLocation removes the location; posts referencing it lose their
// location.
func (s *Store) DeleteLocation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	return affected(res)
}
