package auth

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blogicum/internal/models"
)

const sessionCookie = "blogicum_session"

type Manager struct {
	db     *sql.DB
	maxAge time.Duration
	secure bool
}

func NewManager(db *sql.DB, maxAge time.Duration, secure bool) *Manager {
	return &Manager{db: db, maxAge: maxAge, secure: secure}
}

// Create starts a session for userID, replacing any previous one, and sets
// the session cookie.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, userID int64) error {
	ctx := r.Context()
	if _, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return err
	}
	id := uuid.New().String()
	expires := time.Now().Add(m.maxAge)

	_, err := m.db.ExecContext(ctx, `INSERT INTO sessions(id,user_id,expires_at) VALUES(?,?,?)`, id, userID, expires.Unix())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie(sessionCookie)
	if c != nil && c.Value != "" {
		m.db.ExecContext(r.Context(), `DELETE FROM sessions WHERE id = ?`, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

// Viewer resolves the request's session to the user behind it. Requests
// without a live session are anonymous.
func (m *Manager) Viewer(r *http.Request) models.Viewer {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return models.Anonymous
	}
	var v models.Viewer
	var exp int64
	err = m.db.QueryRowContext(r.Context(),
		`SELECT u.id, u.username, s.expires_at FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.id = ?`,
		c.Value).Scan(&v.UserID, &v.Username, &exp)
	if err != nil || time.Now().After(time.Unix(exp, 0)) {
		return models.Anonymous
	}
	return v
}

// --- password helpers (bcrypt) ---
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
