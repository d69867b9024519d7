package portfolio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, email, name string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, name, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return u
}

func mustPost(t *testing.T, s *Store, author User, title string) BlogPost {
	t.Helper()
	p, err := s.InsertPost(context.Background(), BlogPost{
		AuthorID: author.ID,
		Title:    title,
		Subtitle: "sub " + title,
		Date:     "March 01, 2024",
		Body:     "body of " + title,
		ImgURL:   "https://example.com/" + title + ".png",
	})
	if err != nil {
		t.Fatalf("InsertPost(%s) failed: %v", title, err)
	}
	return p
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	// Reopening an existing database must not fail on the schema.
	if err := s.ensureSchema(); err != nil {
		t.Fatalf("ensureSchema on existing db: %v", err)
	}
}

func TestCreateUserFirstIsAdmin(t *testing.T) {
	s := setupTestStore(t)

	alice := mustUser(t, s, "alice@x.com", "Alice")
	bob := mustUser(t, s, "bob@x.com", "Bob")

	if alice.Role != RoleAdmin {
		t.Errorf("first user role = %q, want admin", alice.Role)
	}
	if bob.Role != RoleReader {
		t.Errorf("second user role = %q, want reader", bob.Role)
	}
	if alice.ID >= bob.ID {
		t.Errorf("ids not increasing: %d, %d", alice.ID, bob.ID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	mustUser(t, s, "alice@x.com", "Alice")

	_, err := s.CreateUser(context.Background(), "alice@x.com", "Other", "hash")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUserLookup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice@x.com", "Alice")

	got, err := s.UserByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("UserByEmail failed: %v", err)
	}
	if got.ID != u.ID || got.Name != "Alice" || got.PasswordHash != "hash" {
		t.Errorf("UserByEmail = %+v", got)
	}

	if _, err := s.UserByID(ctx, u.ID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := s.UserByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByEmail(missing) err = %v, want ErrNotFound", err)
	}
}

func TestListPostsInsertionOrder(t *testing.T) {
	s := setupTestStore(t)
	alice := mustUser(t, s, "alice@x.com", "Alice")
	mustPost(t, s, alice, "first")
	mustPost(t, s, alice, "second")
	mustPost(t, s, alice, "third")

	posts, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for i, want := range []string{"first", "second", "third"} {
		if posts[i].Title != want {
			t.Errorf("posts[%d].Title = %q, want %q", i, posts[i].Title, want)
		}
		if posts[i].Author != "Alice" {
			t.Errorf("posts[%d].Author = %q, want Alice", i, posts[i].Author)
		}
	}
}

func TestListPostsEmpty(t *testing.T) {
	s := setupTestStore(t)
	posts, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts, got %d", len(posts))
	}
}

func TestGetPost(t *testing.T) {
	s := setupTestStore(t)
	alice := mustUser(t, s, "alice@x.com", "Alice")
	p := mustPost(t, s, alice, "hello")

	got, err := s.GetPost(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "hello" || got.Body != "body of hello" || got.Link != postLink(p.ID) {
		t.Errorf("GetPost = %+v", got)
	}

	if _, err := s.GetPost(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(999) err = %v, want ErrNotFound", err)
	}
}

func TestInsertPostDuplicateTitle(t *testing.T) {
	s := setupTestStore(t)
	alice := mustUser(t, s, "alice@x.com", "Alice")
	mustPost(t, s, alice, "hello")

	_, err := s.InsertPost(context.Background(), BlogPost{
		AuthorID: alice.ID, Title: "hello", Subtitle: "s", Date: "d", Body: "b", ImgURL: "https://x.com/a.png",
	})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
}

func TestUpdatePostKeepsDate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice@x.com", "Alice")
	bob := mustUser(t, s, "bob@x.com", "Bob")
	p := mustPost(t, s, alice, "hello")

	updated, err := s.UpdatePost(ctx, BlogPost{
		ID: p.ID, AuthorID: bob.ID, Title: "hello again", Subtitle: "new sub",
		Body: "new body", ImgURL: "https://example.com/new.png", Date: "ignored",
	})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if updated.Date != p.Date {
		t.Errorf("date changed: %q -> %q", p.Date, updated.Date)
	}
	if updated.Title != "hello again" || updated.Author != "Bob" {
		t.Errorf("UpdatePost = %+v", updated)
	}

	if _, err := s.UpdatePost(ctx, BlogPost{ID: 999, AuthorID: alice.ID, Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePost(999) err = %v, want ErrNotFound", err)
	}
}

func TestDeletePostRemovesComments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice@x.com", "Alice")
	bob := mustUser(t, s, "bob@x.com", "Bob")
	p := mustPost(t, s, alice, "hello")
	other := mustPost(t, s, alice, "other")

	for _, postID := range []int64{p.ID, p.ID, other.ID} {
		if _, err := s.InsertComment(ctx, Comment{PostID: postID, AuthorID: bob.ID, Text: "nice"}); err != nil {
			t.Fatalf("InsertComment failed: %v", err)
		}
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted post still readable: %v", err)
	}
	n, err := s.CountComments(ctx)
	if err != nil {
		t.Fatalf("CountComments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("comments left = %d, want 1", n)
	}

	if err := s.DeletePost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestInsertComment(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice@x.com", "Alice")
	bob := mustUser(t, s, "bob@x.com", "Bob")
	p := mustPost(t, s, alice, "hello")

	c, err := s.InsertComment(ctx, Comment{PostID: p.ID, AuthorID: bob.ID, Text: "first!"})
	if err != nil {
		t.Fatalf("InsertComment failed: %v", err)
	}
	if c.ID == 0 || c.Author != "Bob" || c.AuthorEmail != "bob@x.com" {
		t.Errorf("InsertComment = %+v", c)
	}
	if _, err := s.InsertComment(ctx, Comment{PostID: p.ID, AuthorID: alice.ID, Text: "thanks"}); err != nil {
		t.Fatalf("InsertComment failed: %v", err)
	}

	comments, err := s.ListComments(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "first!" || comments[1].Author != "Alice" {
		t.Errorf("ListComments = %+v", comments)
	}

	if _, err := s.InsertComment(ctx, Comment{PostID: 999, AuthorID: bob.ID, Text: "lost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment on missing post err = %v, want ErrNotFound", err)
	}
}
