package store

import (
	"context"
	"fmt"
	"time"

	"blogicum/internal/models"
)

const commentSelect = `SELECT cm.id, cm.post_id, cm.text, cm.created_at,
		u.id, u.username, u.email, u.first_name, u.last_name, u.created_at
	FROM comments cm JOIN users u ON u.id = cm.author_id`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	var created, authorCreated int64
	err := row.Scan(&c.ID, &c.PostID, &c.Text, &created,
		&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName, &c.Author.LastName, &authorCreated)
	if err != nil {
		return nil, notFound(err)
	}
	c.CreatedAt = fromUnix(created)
	c.Author.CreatedAt = fromUnix(authorCreated)
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments(post_id, author_id, text, created_at) VALUES(?,?,?,?)`,
		c.PostID, c.Author.ID, c.Text, unix(c.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return c.ID, err
}

func (s *Store) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	return scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = ?`, id))
}

// ListComments returns the comments of a post oldest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, commentSelect+` WHERE cm.post_id = ? ORDER BY cm.created_at, cm.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateComment(ctx context.Context, id int64, text string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("update comment %d: %w", id, err)
	}
	return affected(res)
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return affected(res)
}
