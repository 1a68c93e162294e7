package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blogicum/internal/models"
)

// postSelect loads a post together with its author, category, location and
// comment count in a single statement.
const postSelect = `SELECT
		p.id, p.title, p.text, p.image, p.pub_date, p.is_published, p.created_at,
		u.id, u.username, u.email, u.first_name, u.last_name, u.created_at,
		c.id, c.title, c.description, c.slug, c.is_published, c.created_at,
		l.id, l.name, l.is_published, l.created_at,
		IFNULL(cc.n, 0)`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id
	LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM comments GROUP BY post_id) cc ON cc.post_id = p.id`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p                                 models.Post
		pubDate, created, authorCreated   int64
		catID                             sql.NullInt64
		catTitle, catDescription, catSlug sql.NullString
		catPublished                      sql.NullBool
		catCreated                        sql.NullInt64
		locID, locCreated                 sql.NullInt64
		locName                           sql.NullString
		locPublished                      sql.NullBool
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Text, &p.Image, &pubDate, &p.IsPublished, &created,
		&p.Author.ID, &p.Author.Username, &p.Author.Email, &p.Author.FirstName, &p.Author.LastName, &authorCreated,
		&catID, &catTitle, &catDescription, &catSlug, &catPublished, &catCreated,
		&locID, &locName, &locPublished, &locCreated,
		&p.CommentCount,
	)
	if err != nil {
		return nil, notFound(err)
	}
	p.PubDate = fromUnix(pubDate)
	p.CreatedAt = fromUnix(created)
	p.Author.CreatedAt = fromUnix(authorCreated)
	if catID.Valid {
		p.Category = &models.Category{
			Publishable: models.Publishable{IsPublished: catPublished.Bool, CreatedAt: fromUnix(catCreated.Int64)},
			ID:          catID.Int64,
			Title:       catTitle.String,
			Description: catDescription.String,
			Slug:        catSlug.String,
		}
	}
	if locID.Valid {
		p.Location = &models.Location{
			Publishable: models.Publishable{IsPublished: locPublished.Bool, CreatedAt: fromUnix(locCreated.Int64)},
			ID:          locID.Int64,
			Name:        locName.String,
		}
	}
	return &p, nil
}

// GetPost loads a post regardless of its visibility. Callers decide who may
// see it.
func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, postSelect+postFrom+` WHERE p.id = ?`, id))
}

func categoryRef(p *models.Post) sql.NullInt64 {
	if p.Category == nil {
		return sql.NullInt64{}
	}
	return nullID(p.Category.ID)
}

func locationRef(p *models.Post) sql.NullInt64 {
	if p.Location == nil {
		return sql.NullInt64{}
	}
	return nullID(p.Location.ID)
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts(title, text, image, pub_date, is_published, created_at, author_id, location_id, category_id)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		p.Title, p.Text, p.Image, unix(p.PubDate), p.IsPublished, unix(p.CreatedAt),
		p.Author.ID, locationRef(p), categoryRef(p))
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return p.ID, err
}

// UpdatePost rewrites every editable field. The author never changes.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, text = ?, image = ?, pub_date = ?, is_published = ?, location_id = ?, category_id = ?
		WHERE id = ?`,
		p.Title, p.Text, p.Image, unix(p.PubDate), p.IsPublished, locationRef(p), categoryRef(p), p.ID)
	if err != nil {
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}
	return affected(res)
}

// DeletePost removes the post and, through the foreign key, its comments.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return affected(res)
}
