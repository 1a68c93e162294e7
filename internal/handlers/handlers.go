package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/metrics"
	"blogicum/internal/models"
	"blogicum/internal/store"
	"blogicum/web"
)

type Handler struct {
	store    *store.Store
	sessions *auth.Manager
	tpls     *template.Template
	metrics  *metrics.Metrics
	log      *slog.Logger
	pageSize int
	secure   bool
	now      func() time.Time
	routes   http.Handler
}

type Options struct {
	PageSize      int
	SecureCookies bool
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	// Now is the clock used for publication checks; time.Now when nil.
	Now func() time.Time
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
	"owns": func(v models.Viewer, authorID int64) bool { return v.Owns(authorID) },
}

func New(st *store.Store, sessions *auth.Manager, opts Options) (*Handler, error) {
	tpls, err := template.New("").Funcs(funcs).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	h := &Handler{
		store:    st,
		sessions: sessions,
		tpls:     tpls,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		pageSize: opts.PageSize,
		secure:   opts.SecureCookies,
		now:      opts.Now,
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.pageSize < 1 {
		h.pageSize = 10
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.routes = h.Routes()
	return h, nil
}

// Routes returns the application handler with its middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(web.Static, "static")
	if err == nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}
	mux.Handle("GET /metrics", h.metrics.Handler())

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /posts/{id}/{$}", h.PostDetail)
	mux.HandleFunc("GET /category/{slug}/{$}", h.CategoryPosts)
	mux.HandleFunc("GET /profile/{username}/{$}", h.Profile)

	mux.HandleFunc("/create", h.RequireAuth(h.CreatePost))
	mux.HandleFunc("/profile/edit", h.RequireAuth(h.EditProfile))
	mux.HandleFunc("/editpost/{id}", h.RequireAuth(h.EditPost))
	mux.HandleFunc("/deletepost/{id}", h.RequireAuth(h.DeletePost))

	mux.HandleFunc("POST /posts/{id}/comment/{$}", h.RequireAuth(h.AddComment))
	mux.HandleFunc("/posts/{id}/edit_comment/{comment_id}/{$}", h.RequireAuth(h.EditComment))
	mux.HandleFunc("/deletecomment/{id}/{comment_id}", h.RequireAuth(h.DeleteComment))

	mux.HandleFunc("/auth/login/{$}", h.Login)
	mux.HandleFunc("POST /auth/logout/{$}", h.Logout)
	mux.HandleFunc("/auth/registration/{$}", h.Register)

	// 404 fallback
	mux.HandleFunc("/", h.NotFound)

	return h.Instrument(WithRecover(h.CSRF(mux), h.ServerError))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.routes.ServeHTTP(w, r)
}

// RequireAuth hands the authenticated viewer to next. Anonymous requests
// are sent to the login page and come back afterwards.
func (h *Handler) RequireAuth(next func(http.ResponseWriter, *http.Request, models.Viewer)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := h.sessions.Viewer(r)
		if !v.Authenticated() {
			http.Redirect(w, r, "/auth/login/?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		next(w, r, v)
	}
}

// render executes the named template into a buffer first so that template
// errors still produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Viewer"]; !ok {
		data["Viewer"] = h.sessions.Viewer(r)
	}
	data["CSRF"] = h.csrfToken(w, r)

	var buf bytes.Buffer
	if err := h.tpls.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("Template execution failed", "template", name, "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404", map[string]any{"Title": "Page not found"})
}

func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "403", map[string]any{"Title": "Forbidden"})
}

// ServerError renders the static 500 page. It does not look up the session,
// the database may be what failed.
func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "500", map[string]any{
		"Title":  "Server error",
		"Viewer": models.Anonymous,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	h.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	h.ServerError(w, r)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
