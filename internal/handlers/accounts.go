package handlers

import (
	"errors"
	"net/http"
	"strings"

	"blogicum/internal/auth"
	"blogicum/internal/models"
	"blogicum/internal/store"
)

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, "login", map[string]any{
			"Title": "Log in",
			"Next":  r.URL.Query().Get("next"),
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	pass := r.PostFormValue("password")
	next := r.PostFormValue("next")

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.fail(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(pass, user.PasswordHash) {
		h.render(w, r, http.StatusBadRequest, "login", map[string]any{
			"Title":    "Log in",
			"Next":     next,
			"Username": username,
			"Error":    "Wrong username or password",
		})
		return
	}

	if err := h.sessions.Create(w, r, user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, "registration", map[string]any{
			"Title": "Sign up",
			"Form":  registrationForm{profileForm: profileForm{Errors: FieldErrors{}}},
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	form := parseRegistrationForm(r)
	if !form.Errors.Any() {
		hash, err := auth.HashPassword(form.Password)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		u := &models.User{PasswordHash: hash}
		form.apply(u)
		_, err = h.store.CreateUser(r.Context(), u)
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			form.Errors["username"] = "A user with that username already exists."
		case err != nil:
			h.fail(w, r, err)
			return
		default:
			h.log.Info("User registered", "user_id", u.ID, "username", u.Username)
			http.Redirect(w, r, "/auth/login/", http.StatusSeeOther)
			return
		}
	}
	h.render(w, r, http.StatusBadRequest, "registration", map[string]any{
		"Title": "Sign up",
		"Form":  form,
	})
}

// EditProfile lets the viewer change their own profile fields.
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request, v models.Viewer) {
	user, err := h.store.GetUser(r.Context(), v.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, "user", map[string]any{
			"Title":  "Edit profile",
			"Form":   profileFormFrom(user),
			"Viewer": v,
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	form := parseProfileForm(r)
	if !form.Errors.Any() {
		form.apply(user)
		err := h.store.UpdateProfile(r.Context(), user)
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			form.Errors["username"] = "A user with that username already exists."
		case err != nil:
			h.fail(w, r, err)
			return
		default:
			http.Redirect(w, r, profileURL(user.Username), http.StatusSeeOther)
			return
		}
	}
	h.render(w, r, http.StatusBadRequest, "user", map[string]any{
		"Title":  "Edit profile",
		"Form":   form,
		"Viewer": v,
	})
}
