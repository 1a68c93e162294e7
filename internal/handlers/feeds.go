package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"blogicum/internal/models"
	"blogicum/internal/store"
)

// pageNumber reads ?page=, defaulting to the first page.
func pageNumber(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 1, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil && n > 0
}

// feed renders one page of q with the named template. Pages that do not
// exist are 404s.
func (h *Handler) feed(w http.ResponseWriter, r *http.Request, feed, tpl string, q store.Query, data map[string]any) {
	number, ok := pageNumber(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	page, err := h.store.ListPosts(r.Context(), q, number, h.pageSize)
	if errors.Is(err, store.ErrPageOutOfRange) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.ObserveFeed(feed, len(page.Posts))
	data["Page"] = page
	h.render(w, r, http.StatusOK, tpl, data)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, "home", "index", store.PubliclyVisible(h.now()), map[string]any{
		"Title": "Blogicum",
	})
}

func (h *Handler) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategoryBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !category.IsPublished {
		h.NotFound(w, r)
		return
	}
	h.feed(w, r, "category", "category", store.PubliclyVisible(h.now()).InCategory(category.ID), map[string]any{
		"Title":    category.Title,
		"Category": category,
	})
}

// Profile shows an author's posts. The author sees drafts and scheduled
// posts too; everyone else only what is publicly visible.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.GetUserByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := h.sessions.Viewer(r)
	q := store.PubliclyVisible(h.now())
	if v.Owns(profile.ID) {
		q = store.AllPosts()
	}
	h.feed(w, r, "profile", "profile", q.ByAuthor(profile.ID), map[string]any{
		"Title":   profile.FullName(),
		"Profile": profile,
		"Viewer":  v,
	})
}

// PostDetail shows a post with its comments. Posts the viewer may not see
// are reported as missing.
func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := h.sessions.Viewer(r)
	if !post.VisibleTo(v, h.now()) {
		h.NotFound(w, r)
		return
	}
	h.renderDetail(w, r, http.StatusOK, post, v, commentForm{Errors: FieldErrors{}})
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, status int, post *models.Post, v models.Viewer, form commentForm) {
	comments, err := h.store.ListComments(r.Context(), post.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, "detail", map[string]any{
		"Title":      post.Title,
		"Post":       post,
		"Comments":   comments,
		"Form":       form,
		"Viewer":     v,
		"CanComment": v.Authenticated() && post.PubliclyVisible(h.now()),
	})
}
