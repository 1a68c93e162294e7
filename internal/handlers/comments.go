package handlers

import (
	"net/http"

	"blogicum/internal/models"
)

// AddComment attaches a comment to a publicly visible post.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request, v models.Viewer) {
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
	if !post.PubliclyVisible(h.now()) {
		h.NotFound(w, r)
		return
	}

	form := parseCommentForm(r)
	if form.Errors.Any() {
		h.renderDetail(w, r, http.StatusBadRequest, post, v, form)
		return
	}
	c := &models.Comment{
		PostID: post.ID,
		Text:   form.Text,
		Author: models.User{ID: v.UserID, Username: v.Username},
	}
	if _, err := h.store.CreateComment(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// authoredComment loads the comment named in the path. Comments of other
// authors, or not under the post in the path, are reported as missing.
func (h *Handler) authoredComment(w http.ResponseWriter, r *http.Request, v models.Viewer) *models.Comment {
	postID, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return nil
	}
	commentID, ok := pathID(r, "comment_id")
	if !ok {
		h.NotFound(w, r)
		return nil
	}
	c, err := h.store.GetComment(r.Context(), commentID)
	if err != nil {
		h.fail(w, r, err)
		return nil
	}
	if c.PostID != postID || !v.Owns(c.Author.ID) {
		h.NotFound(w, r)
		return nil
	}
	return c
}

func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request, v models.Viewer) {
	c := h.authoredComment(w, r, v)
	if c == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, "comment", map[string]any{
			"Title":   "Edit comment",
			"Comment": c,
			"Form":    commentForm{Text: c.Text, Errors: FieldErrors{}},
			"Viewer":  v,
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	form := parseCommentForm(r)
	if form.Errors.Any() {
		h.render(w, r, http.StatusBadRequest, "comment", map[string]any{
			"Title":   "Edit comment",
			"Comment": c,
			"Form":    form,
			"Viewer":  v,
		})
		return
	}
	if err := h.store.UpdateComment(r.Context(), c.ID, form.Text); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(c.PostID), http.StatusSeeOther)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request, v models.Viewer) {
	c := h.authoredComment(w, r, v)
	if c == nil {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, "comment", map[string]any{
			"Title":   "Delete comment",
			"Comment": c,
			"Delete":  true,
			"Viewer":  v,
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.store.DeleteComment(r.Context(), c.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(c.PostID), http.StatusSeeOther)
}
