package models

import "time"

// Publishable holds the fields shared by every entity an editor can hide.
type Publishable struct {
	IsPublished bool
	CreatedAt   time.Time
}

type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

// FullName returns "First Last", falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

type Category struct {
	Publishable
	ID          int64
	Title       string
	Description string
	Slug        string
}

type Location struct {
	Publishable
	ID   int64
	Name string
}

type Post struct {
	Publishable
	ID       int64
	Title    string
	Text     string
	Image    string
	PubDate  time.Time
	Author   User
	Location *Location
	Category *Category

	// CommentCount is filled by feed queries only.
	CommentCount int
}

type Comment struct {
	ID        int64
	PostID    int64
	Text      string
	Author    User
	CreatedAt time.Time
}
