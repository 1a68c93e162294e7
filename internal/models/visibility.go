package models

import "time"

// Viewer identifies who is making a request. The zero value is an
// anonymous visitor.
type Viewer struct {
	UserID   int64
	Username string
}

// Anonymous is the viewer of a request without a valid session.
var Anonymous = Viewer{}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

// Owns reports whether v is the given author.
func (v Viewer) Owns(authorID int64) bool {
	return v.Authenticated() && v.UserID == authorID
}

// PubliclyVisible reports whether the post may be shown to anyone: it is
// published, its category (if any) is published and its publication date
// has been reached.
func (p *Post) PubliclyVisible(now time.Time) bool {
	if !p.IsPublished {
		return false
	}
	if p.Category != nil && !p.Category.IsPublished {
		return false
	}
	return !p.PubDate.After(now)
}

// VisibleTo applies the author override on top of PubliclyVisible.
func (p *Post) VisibleTo(v Viewer, now time.Time) bool {
	return v.Owns(p.Author.ID) || p.PubliclyVisible(now)
}
