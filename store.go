package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding users, blog posts and comments.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Pragmas go in the DSN so every pooled connection gets them; foreign
	// keys in particular are per connection in SQLite.
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'reader'
);
CREATE TABLE IF NOT EXISTS blog_posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    author_id INTEGER NOT NULL REFERENCES users(id),
    title TEXT NOT NULL UNIQUE,
    subtitle TEXT NOT NULL,
    date TEXT NOT NULL,
    body TEXT NOT NULL,
    img_url TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    author_id INTEGER NOT NULL REFERENCES users(id),
    post_id INTEGER NOT NULL REFERENCES blog_posts(id) ON DELETE CASCADE,
    text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS comments_post_id ON comments(post_id);
`)
	return err
}

// CreateUser inserts a user. The first user ever stored becomes RoleAdmin;
// the check and the insert are one statement so two concurrent first
// registrations cannot both become admin.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (User, error) {
	u := User{Email: email, Name: name, PasswordHash: passwordHash}
	var role string
	err := s.db.QueryRowContext(ctx, `
INSERT INTO users (email, password, name, role)
VALUES (?, ?, ?, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'reader' ELSE 'admin' END)
RETURNING id, role`, email, passwordHash, name).Scan(&u.ID, &role)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

// UserByID returns the user with id, or ErrNotFound.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password, role FROM users WHERE id = ?`, id))
}

// UserByEmail returns the user registered with email, or ErrNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password, role FROM users WHERE email = ?`, email))
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

const postColumns = `p.id, p.author_id, u.name, p.title, p.subtitle, p.date, p.body, p.img_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (BlogPost, error) {
	var p BlogPost
	if err := r.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL); err != nil {
		return BlogPost{}, err
	}
	p.Link = postLink(p.ID)
	return p, nil
}

// ListPosts returns every post in insertion order.
func (s *Store) ListPosts(ctx context.Context) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+`
FROM blog_posts p JOIN users u ON u.id = p.author_id
ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost returns a single post by id, or ErrNotFound.
func (s *Store) GetPost(ctx context.Context, id int64) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+`
FROM blog_posts p JOIN users u ON u.id = p.author_id
WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// InsertPost stores p and returns it as read back from the database.
func (s *Store) InsertPost(ctx context.Context, p BlogPost) (BlogPost, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`, p.AuthorID, p.Title, p.Subtitle, p.Date, p.Body, p.ImgURL).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "blog_posts.title") {
			return BlogPost{}, ErrDuplicateTitle
		}
		return BlogPost{}, err
	}
	return s.GetPost(ctx, id)
}

// UpdatePost overwrites the editable fields of the post with p.ID. The date
// column is never touched.
func (s *Store) UpdatePost(ctx context.Context, p BlogPost) (BlogPost, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE blog_posts SET author_id = ?, title = ?, subtitle = ?, body = ?, img_url = ?
WHERE id = ?`, p.AuthorID, p.Title, p.Subtitle, p.Body, p.ImgURL, p.ID)
	if err != nil {
		if isUniqueViolation(err, "blog_posts.title") {
			return BlogPost{}, ErrDuplicateTitle
		}
		return BlogPost{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return BlogPost{}, ErrNotFound
	}
	return s.GetPost(ctx, p.ID)
}

// DeletePost removes a post and its comments in one transaction.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// InsertComment stores c and returns it with its id and author filled in.
func (s *Store) InsertComment(ctx context.Context, c Comment) (Comment, error) {
	err := s.db.QueryRowContext(ctx, `
INSERT INTO comments (author_id, post_id, text) VALUES (?, ?, ?)
RETURNING id`, c.AuthorID, c.PostID, c.Text).Scan(&c.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	author, err := s.UserByID(ctx, c.AuthorID)
	if err != nil {
		return Comment{}, err
	}
	c.Author = author.Name
	c.AuthorEmail = author.Email
	return c, nil
}

// ListComments returns the comments of a post in insertion order.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.post_id, c.author_id, u.name, u.email, c.text
FROM comments c JOIN users u ON u.id = c.author_id
WHERE c.post_id = ?
ORDER BY c.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.AuthorEmail, &c.Text); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountComments returns how many comments exist, across all posts.
func (s *Store) CountComments(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n)
	return n, err
}

func isUniqueViolation(err error, column string) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
