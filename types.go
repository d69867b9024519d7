package portfolio

import "strconv"

// Role is the authorization level of a User.
type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// User is a registered account. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

// BlogPost is the core content type stored in SQLite and rendered by templates.
type BlogPost struct {
	ID       int64
	AuthorID int64
	Author   string // author display name
	Title    string
	Subtitle string
	Date     string // "January 02, 2006"
	Body     string // Markdown
	ImgURL   string
	Link     string
}

// Comment is a reader comment attached to a BlogPost.
type Comment struct {
	ID          int64
	PostID      int64
	AuthorID    int64
	Author      string
	AuthorEmail string
	Text        string
}

// Page carries per-request state shared by every template: who is logged in,
// pending flash messages and the CSRF token for forms.
type Page struct {
	SiteName  string
	SiteURL   string
	Title     string
	Identity  *User
	IsAdmin   bool
	Flashes   []string
	CSRFToken string
}

// LoggedIn reports whether the page is rendered for an authenticated user.
func (p Page) LoggedIn() bool {
	return p.Identity != nil
}

// PostDateLayout is the layout used for BlogPost.Date.
const PostDateLayout = "January 02, 2006"

func postLink(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10)
}
