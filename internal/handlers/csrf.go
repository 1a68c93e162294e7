package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

const (
	csrfCookie = "csrftoken"
	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

// csrfToken returns the request's CSRF token, issuing a cookie when the
// client has none yet.
func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookie); err == nil && c.Value != "" {
		return c.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	// Later reads within the same request see the issued token.
	r.AddCookie(&http.Cookie{Name: csrfCookie, Value: token})
	return token
}

// CSRF rejects unsafe requests whose form field (or header) does not match
// the csrftoken cookie.
func (h *Handler) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}
		c, err := r.Cookie(csrfCookie)
		if err != nil || c.Value == "" {
			h.Forbidden(w, r)
			return
		}
		token := r.Header.Get(csrfHeader)
		if token == "" {
			token = r.PostFormValue(csrfField)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(c.Value)) != 1 {
			h.Forbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
