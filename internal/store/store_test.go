package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogicum/internal/db"
	"blogicum/internal/models"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	return New(conn)
}

func mustUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x"}
	_, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return u
}

func mustCategory(t *testing.T, s *Store, slug string, published bool) *models.Category {
	t.Helper()
	c := &models.Category{Title: slug, Slug: slug, Publishable: models.Publishable{IsPublished: published}}
	_, err := s.CreateCategory(context.Background(), c)
	require.NoError(t, err)
	return c
}

func mustPost(t *testing.T, s *Store, author *models.User, title string, published bool, pubDate time.Time, cat *models.Category) *models.Post {
	t.Helper()
	p := &models.Post{
		Publishable: models.Publishable{IsPublished: published},
		Title:       title,
		Text:        title + " body",
		PubDate:     pubDate,
		Author:      *author,
		Category:    cat,
	}
	_, err := s.CreatePost(context.Background(), p)
	require.NoError(t, err)
	return p
}

func titles(page *Page) []string {
	var out []string
	for _, p := range page.Posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPubliclyVisibleFeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	news := mustCategory(t, s, "news", true)
	drafts := mustCategory(t, s, "drafts", false)

	mustPost(t, s, alice, "visible", true, now.Add(-2*time.Hour), news)
	mustPost(t, s, alice, "uncategorized", true, now.Add(-time.Hour), nil)
	mustPost(t, s, alice, "unpublished", false, now.Add(-time.Hour), news)
	mustPost(t, s, alice, "future", true, now.Add(time.Hour), news)
	mustPost(t, s, alice, "hidden category", true, now.Add(-time.Hour), drafts)

	page, err := s.ListPosts(ctx, PubliclyVisible(now), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"uncategorized", "visible"}, titles(page))
	assert.Equal(t, 2, page.Total)

	// Once time passes the scheduled date the post shows up.
	page, err = s.ListPosts(ctx, PubliclyVisible(now.Add(2*time.Hour)), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"future", "uncategorized", "visible"}, titles(page))
}

func TestProfileFeedOwnerSeesEverything(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	mustPost(t, s, alice, "a1", true, now.Add(-time.Hour), nil)
	mustPost(t, s, alice, "a2", false, now.Add(-2*time.Hour), nil)
	mustPost(t, s, alice, "a3", true, now.Add(time.Hour), nil)
	mustPost(t, s, bob, "b1", true, now.Add(-time.Hour), nil)

	own, err := s.ListPosts(ctx, AllPosts().ByAuthor(alice.ID), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a3", "a1", "a2"}, titles(own))

	public, err := s.ListPosts(ctx, PubliclyVisible(now).ByAuthor(alice.ID), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, titles(public))
}

func TestCategoryFeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	news := mustCategory(t, s, "news", true)
	travel := mustCategory(t, s, "travel", true)
	mustPost(t, s, alice, "n1", true, now.Add(-time.Hour), news)
	mustPost(t, s, alice, "t1", true, now.Add(-time.Hour), travel)
	mustPost(t, s, alice, "n2", false, now.Add(-time.Hour), news)

	page, err := s.ListPosts(ctx, PubliclyVisible(now).InCategory(news.ID), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, titles(page))
	require.NotNil(t, page.Posts[0].Category)
	assert.Equal(t, "news", page.Posts[0].Category.Slug)
	assert.Equal(t, "alice", page.Posts[0].Author.Username)
}

func TestListPostsPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	for i := 0; i < 5; i++ {
		mustPost(t, s, alice, string(rune('a'+i)), true, now.Add(-time.Duration(i)*time.Hour), nil)
	}

	first, err := s.ListPosts(ctx, PubliclyVisible(now), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles(first))
	assert.Equal(t, 3, first.NumPages())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrev())

	last, err := s.ListPosts(ctx, PubliclyVisible(now), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, titles(last))
	assert.False(t, last.HasNext())

	_, err = s.ListPosts(ctx, PubliclyVisible(now), 4, 2)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = s.ListPosts(ctx, PubliclyVisible(now), 0, 2)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestEmptyFeedHasFirstPage(t *testing.T) {
	s := newTestStore(t)
	page, err := s.ListPosts(context.Background(), PubliclyVisible(now), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.NumPages())
}

func TestCommentCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	p1 := mustPost(t, s, alice, "p1", true, now.Add(-time.Hour), nil)
	mustPost(t, s, alice, "p2", true, now.Add(-2*time.Hour), nil)
	for i := 0; i < 3; i++ {
		_, err := s.CreateComment(ctx, &models.Comment{PostID: p1.ID, Author: *alice, Text: "hi"})
		require.NoError(t, err)
	}

	page, err := s.ListPosts(ctx, PubliclyVisible(now), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, 3, page.Posts[0].CommentCount)
	assert.Equal(t, 0, page.Posts[1].CommentCount)
}

func TestCommentsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	p := mustPost(t, s, alice, "p", true, now.Add(-time.Hour), nil)

	for _, c := range []struct {
		text string
		at   time.Time
	}{
		{"second", now.Add(2 * time.Minute)},
		{"first", now.Add(time.Minute)},
		{"third", now.Add(3 * time.Minute)},
	} {
		_, err := s.CreateComment(ctx, &models.Comment{PostID: p.ID, Author: *alice, Text: c.text, CreatedAt: c.at})
		require.NoError(t, err)
	}

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	var got []string
	for _, c := range comments {
		got = append(got, c.Text)
		assert.Equal(t, "alice", c.Author.Username)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestDeleteLocationNullsPostLocation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	loc := &models.Location{Name: "Moscow", Publishable: models.Publishable{IsPublished: true}}
	_, err := s.CreateLocation(ctx, loc)
	require.NoError(t, err)

	p := &models.Post{Title: "t", Text: "x", PubDate: now, Author: *alice, Location: loc}
	_, err = s.CreatePost(ctx, p)
	require.NoError(t, err)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Moscow", got.Location.Name)

	require.NoError(t, s.DeleteLocation(ctx, loc.ID))
	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Location)
}

func TestDeleteCategoryNullsPostCategory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	news := mustCategory(t, s, "news", true)
	p := mustPost(t, s, alice, "t", true, now, news)

	require.NoError(t, s.DeleteCategory(ctx, "news"))
	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	assert.ErrorIs(t, s.DeleteCategory(ctx, "news"), ErrNotFound)
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	p := mustPost(t, s, alice, "t", true, now, nil)
	c := &models.Comment{PostID: p.ID, Author: *alice, Text: "hi"}
	_, err := s.CreateComment(ctx, c)
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	_, err = s.GetComment(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	news := mustCategory(t, s, "news", true)
	p := mustPost(t, s, alice, "old", true, now, news)

	p.Title = "new"
	p.IsPublished = false
	p.Category = nil
	require.NoError(t, s.UpdatePost(ctx, p))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.False(t, got.IsPublished)
	assert.Nil(t, got.Category)
	assert.True(t, now.Equal(got.PubDate))

	assert.ErrorIs(t, s.UpdatePost(ctx, &models.Post{ID: 999, PubDate: now}), ErrNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	_, err := s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	bob.Username = "alice"
	assert.ErrorIs(t, s.UpdateProfile(ctx, bob), ErrDuplicateUsername)

	alice.FirstName = "Alice"
	require.NoError(t, s.UpdateProfile(ctx, alice))
	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustCategory(t, s, "news", true)
	mustCategory(t, s, "drafts", false)

	_, err := s.CreateCategory(ctx, &models.Category{Title: "x", Slug: "news"})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	published, err := s.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "news", published[0].Slug)

	require.NoError(t, s.SetCategoryPublished(ctx, "drafts", true))
	all, err := s.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, s.SetCategoryPublished(ctx, "missing", true), ErrNotFound)
}
