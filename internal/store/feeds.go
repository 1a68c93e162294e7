package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blogicum/internal/models"
)

// Query is a composable filter over posts. The zero value matches every
// post; use PubliclyVisible or AllPosts to start one.
type Query struct {
	where []string
	args  []any
}

// PubliclyVisible matches posts anyone may see at time now: published, in a
// published category or in none, and with pub_date reached.
func PubliclyVisible(now time.Time) Query {
	return Query{}.
		and("p.is_published = 1").
		and("(p.category_id IS NULL OR c.is_published = 1)").
		and("p.pub_date <= ?", unix(now))
}

// AllPosts matches every post regardless of visibility. It is what an author
// sees of their own profile.
func AllPosts() Query {
	return Query{}
}

func (q Query) ByAuthor(userID int64) Query {
	return q.and("p.author_id = ?", userID)
}

func (q Query) InCategory(categoryID int64) Query {
	return q.and("p.category_id = ?", categoryID)
}

func (q Query) and(cond string, args ...any) Query {
	where := make([]string, len(q.where), len(q.where)+1)
	copy(where, q.where)
	all := make([]any, len(q.args), len(q.args)+len(args))
	copy(all, q.args)
	return Query{where: append(where, cond), args: append(all, args...)}
}

func (q Query) clause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// Page is one page of a feed.
type Page struct {
	Posts  []models.Post
	Number int
	Size   int
	Total  int
}

// NumPages is never below one so that an empty feed still has a first page.
func (p *Page) NumPages() int {
	if p.Total == 0 || p.Size <= 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.NumPages() }
func (p *Page) Prev() int { return p.Number - 1 }
func (p *Page) Next() int { return p.Number + 1 }

// ListPosts returns page number (1-based) of the posts matched by q, newest
// pub_date first. Author, category, location and comment count come from
// the same statement. A page past the end yields ErrPageOutOfRange.
func (s *Store) ListPosts(ctx context.Context, q Query, number, size int) (*Page, error) {
	if number < 1 || size < 1 {
		return nil, ErrPageOutOfRange
	}
	page := &Page{Number: number, Size: size}

	countSQL := `SELECT COUNT(*) FROM posts p LEFT JOIN categories c ON c.id = p.category_id` + q.clause()
	if err := s.db.QueryRowContext(ctx, countSQL, q.args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if number > page.NumPages() {
		return nil, ErrPageOutOfRange
	}

	listSQL := postSelect + postFrom + q.clause() + ` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`
	args := append(append([]any{}, q.args...), size, (number-1)*size)
	rows, err := s.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		page.Posts = append(page.Posts, *p)
	}
	return page, rows.Err()
}
