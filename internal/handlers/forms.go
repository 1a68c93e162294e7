package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"blogicum/internal/models"
	"blogicum/internal/store"
)

// pubDateLayout matches <input type="datetime-local">.
const pubDateLayout = "2006-01-02T15:04"

const maxTitle = 256

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// FieldErrors maps form field names to a message.
type FieldErrors map[string]string

func (e FieldErrors) Any() bool { return len(e) > 0 }

type postForm struct {
	Title       string
	Text        string
	Image       string
	PubDate     string
	IsPublished bool
	CategoryID  string
	LocationID  string
	Errors      FieldErrors
}

func postFormFrom(p *models.Post) postForm {
	f := postForm{
		Title:       p.Title,
		Text:        p.Text,
		Image:       p.Image,
		PubDate:     p.PubDate.UTC().Format(pubDateLayout),
		IsPublished: p.IsPublished,
		Errors:      FieldErrors{},
	}
	if p.Category != nil {
		f.CategoryID = strconv.FormatInt(p.Category.ID, 10)
	}
	if p.Location != nil {
		f.LocationID = strconv.FormatInt(p.Location.ID, 10)
	}
	return f
}

func parsePostForm(r *http.Request) postForm {
	return postForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Text:        strings.TrimSpace(r.PostFormValue("text")),
		Image:       strings.TrimSpace(r.PostFormValue("image")),
		PubDate:     strings.TrimSpace(r.PostFormValue("pub_date")),
		IsPublished: r.PostFormValue("is_published") != "",
		CategoryID:  r.PostFormValue("category"),
		LocationID:  r.PostFormValue("location"),
		Errors:      FieldErrors{},
	}
}

// apply validates f and copies it onto p. Category and location ids must
// refer to existing rows.
func (f *postForm) apply(ctx context.Context, st *store.Store, p *models.Post) error {
	switch {
	case f.Title == "":
		f.Errors["title"] = "This field is required."
	case utf8.RuneCountInString(f.Title) > maxTitle:
		f.Errors["title"] = "Ensure this value has at most 256 characters."
	}
	if f.Text == "" {
		f.Errors["text"] = "This field is required."
	}
	pubDate, err := time.ParseInLocation(pubDateLayout, f.PubDate, time.UTC)
	if err != nil {
		f.Errors["pub_date"] = "Enter a valid date/time."
	}

	var category *models.Category
	if f.CategoryID != "" {
		id, err := strconv.ParseInt(f.CategoryID, 10, 64)
		if err != nil {
			f.Errors["category"] = "Select a valid choice."
		} else if category, err = st.GetCategory(ctx, id); errors.Is(err, store.ErrNotFound) {
			f.Errors["category"] = "Select a valid choice."
		} else if err != nil {
			return err
		}
	}

	var location *models.Location
	if f.LocationID != "" {
		id, err := strconv.ParseInt(f.LocationID, 10, 64)
		if err != nil {
			f.Errors["location"] = "Select a valid choice."
		} else if location, err = st.GetLocation(ctx, id); errors.Is(err, store.ErrNotFound) {
			f.Errors["location"] = "Select a valid choice."
		} else if err != nil {
			return err
		}
	}

	if f.Errors.Any() {
		return nil
	}
	p.Title = f.Title
	p.Text = f.Text
	p.Image = f.Image
	p.PubDate = pubDate
	p.IsPublished = f.IsPublished
	p.Category = category
	p.Location = location
	return nil
}

type commentForm struct {
	Text   string
	Errors FieldErrors
}

func parseCommentForm(r *http.Request) commentForm {
	f := commentForm{Text: strings.TrimSpace(r.PostFormValue("text")), Errors: FieldErrors{}}
	if f.Text == "" {
		f.Errors["text"] = "This field is required."
	}
	return f
}

type profileForm struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Errors    FieldErrors
}

func profileFormFrom(u *models.User) profileForm {
	return profileForm{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Errors:    FieldErrors{},
	}
}

func parseProfileForm(r *http.Request) profileForm {
	f := profileForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Errors:    FieldErrors{},
	}
	switch {
	case f.Username == "":
		f.Errors["username"] = "This field is required."
	case len(f.Username) > 150 || !usernamePattern.MatchString(f.Username):
		f.Errors["username"] = "Enter a valid username: at most 150 letters, digits and @/./+/-/_ characters."
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			f.Errors["email"] = "Enter a valid email address."
		}
	}
	return f
}

func (f profileForm) apply(u *models.User) {
	u.Username = f.Username
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email
}

type registrationForm struct {
	profileForm
	Password  string
	Password2 string
}

func parseRegistrationForm(r *http.Request) registrationForm {
	f := registrationForm{
		profileForm: parseProfileForm(r),
		Password:    r.PostFormValue("password1"),
		Password2:   r.PostFormValue("password2"),
	}
	switch {
	case f.Password == "":
		f.Errors["password1"] = "This field is required."
	case len(f.Password) < 8:
		f.Errors["password1"] = "This password is too short. It must contain at least 8 characters."
	case f.Password != f.Password2:
		f.Errors["password2"] = "The two password fields didn't match."
	}
	return f
}
