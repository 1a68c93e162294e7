package handlers

import (
	"net/http"

	"blogicum/internal/models"
)

// renderPostForm shows the create/edit form with the selectable categories
// and locations.
func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, status int, v models.Viewer, form postForm, post *models.Post) {
	ctx := r.Context()
	categories, err := h.store.ListCategories(ctx, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	locations, err := h.store.ListLocations(ctx, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	h.render(w, r, status, "create", map[string]any{
		"Title":      title,
		"Form":       form,
		"Post":       post,
		"Categories": categories,
		"Locations":  locations,
		"Viewer":     v,
	})
}

// CreatePost publishes a new post authored by the viewer and sends them to
// their profile.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request, v models.Viewer) {
	switch r.Method {
	case http.MethodGet:
		form := postFormFrom(&models.Post{
			Publishable: models.Publishable{IsPublished: true},
			PubDate:     h.now(),
		})
		h.renderPostForm(w, r, http.StatusOK, v, form, nil)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	form := parsePostForm(r)
	post := &models.Post{Author: models.User{ID: v.UserID, Username: v.Username}}
	if err := form.apply(r.Context(), h.store, post); err != nil {
		h.fail(w, r, err)
		return
	}
	if form.Errors.Any() {
		h.renderPostForm(w, r, http.StatusBadRequest, v, form, nil)
		return
	}
	if _, err := h.store.CreatePost(r.Context(), post); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("Post created", "post_id", post.ID, "author", v.Username)
	http.Redirect(w, r, profileURL(v.Username), http.StatusSeeOther)
}

// authoredPost loads the post named in the path for a mutation. It answers
// the request itself (404, or a redirect to the post for non-authors) and
// returns nil when the caller must stop.
func (h *Handler) authoredPost(w http.ResponseWriter, r *http.Request, v models.Viewer) *models.Post {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return nil
	}
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return nil
	}
	if !v.Owns(post.Author.ID) {
		http.Redirect(w, r, postURL(post.ID), http.StatusFound)
		return nil
	}
	return post
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request, v models.Viewer) {
	post := h.authoredPost(w, r, v)
	if post == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.renderPostForm(w, r, http.StatusOK, v, postFormFrom(post), post)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	form := parsePostForm(r)
	if err := form.apply(r.Context(), h.store, post); err != nil {
		h.fail(w, r, err)
		return
	}
	if form.Errors.Any() {
		h.renderPostForm(w, r, http.StatusBadRequest, v, form, post)
		return
	}
	if err := h.store.UpdatePost(r.Context(), post); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request, v models.Viewer) {
	post := h.authoredPost(w, r, v)
	if post == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, "delete_post", map[string]any{
			"Title":  "Delete post",
			"Post":   post,
			"Viewer": v,
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.store.DeletePost(r.Context(), post.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("Post deleted", "post_id", post.ID, "author", v.Username)
	http.Redirect(w, r, profileURL(v.Username), http.StatusSeeOther)
}
