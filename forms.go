package portfolio

import (
	"net/url"
	"strings"
)

const requiredMsg = "This field is required."

// maxPasswordLen is the bcrypt input limit.
const maxPasswordLen = 72

// PostForm is the create and edit form for a BlogPost.
type PostForm struct {
	Title    string `form:"title"`
	Subtitle string `form:"subtitle"`
	ImgURL   string `form:"img_url"`
	Body     string `form:"body"`
}

func (f *PostForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.ImgURL = strings.TrimSpace(f.ImgURL)
	f.Body = strings.TrimSpace(f.Body)
}

// Validate trims every field and checks that all are present and that
// ImgURL is an absolute http(s) URL.
func (f *PostForm) Validate() error {
	f.normalize()
	var ve ValidationError
	required(&ve, "title", f.Title)
	required(&ve, "subtitle", f.Subtitle)
	required(&ve, "img_url", f.ImgURL)
	required(&ve, "body", f.Body)
	if f.ImgURL != "" && !IsURL(f.ImgURL) {
		ve.add("img_url", "Invalid URL.")
	}
	return ve.err()
}

// PostFormFrom prefills a PostForm for editing p.
func PostFormFrom(p BlogPost) PostForm {
	return PostForm{Title: p.Title, Subtitle: p.Subtitle, ImgURL: p.ImgURL, Body: p.Body}
}

// SignupForm is the registration form.
type SignupForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Name     string `form:"name"`
}

func (f *SignupForm) Validate() error {
	f.Email = normalizeEmail(f.Email)
	f.Name = strings.TrimSpace(f.Name)
	var ve ValidationError
	required(&ve, "email", f.Email)
	required(&ve, "password", f.Password)
	required(&ve, "name", f.Name)
	if f.Email != "" && !looksLikeEmail(f.Email) {
		ve.add("email", "Invalid email address.")
	}
	if len(f.Password) > maxPasswordLen {
		ve.add("password", "Password must be 72 bytes or fewer.")
	}
	return ve.err()
}

// LoginForm is the login form.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (f *LoginForm) Validate() error {
	f.Email = normalizeEmail(f.Email)
	var ve ValidationError
	required(&ve, "email", f.Email)
	required(&ve, "password", f.Password)
	return ve.err()
}

// CommentForm is the comment box on a post page.
type CommentForm struct {
	Comment string `form:"comment"`
}

func (f *CommentForm) Validate() error {
	f.Comment = strings.TrimSpace(f.Comment)
	var ve ValidationError
	required(&ve, "comment", f.Comment)
	return ve.err()
}

// ContactForm is the contact page form.
type ContactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Message string `form:"message"`
}

func (f *ContactForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Message = strings.TrimSpace(f.Message)
	var ve ValidationError
	required(&ve, "name", f.Name)
	required(&ve, "email", f.Email)
	required(&ve, "phone", f.Phone)
	required(&ve, "message", f.Message)
	if f.Email != "" && !looksLikeEmail(f.Email) {
		ve.add("email", "Invalid email address.")
	}
	return ve.err()
}

func required(ve *ValidationError, field, value string) {
	if value == "" {
		ve.add(field, requiredMsg)
	}
}

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return host != "" && !strings.ContainsAny(host, " ")
}

func looksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
