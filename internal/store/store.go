// Package store is the relational store of the blog: CRUD for categories,
// locations, posts, comments and users, and the composer that builds the
// paginated post feeds.
package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateSlug     = errors.New("category slug already exists")
	ErrPageOutOfRange    = errors.New("page out of range")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for collaborators sharing the database
// (the session manager).
func (s *Store) DB() *sql.DB {
	return s.db
}

func unix(t time.Time) int64 {
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func isUnique(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
