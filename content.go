package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Content implements the blog post and comment operations. Every mutating
// method takes the caller's identity, nil meaning anonymous.
type Content struct {
	store *Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewContent creates a Content backed by store. now stamps post dates.
func NewContent(store *Store, log zerolog.Logger, now func() time.Time) *Content {
	if now == nil {
		now = time.Now
	}
	return &Content{store: store, log: log, now: now}
}

// ListPosts returns all posts in the order they were created.
func (s *Content) ListPosts(ctx context.Context) ([]BlogPost, error) {
	return s.store.ListPosts(ctx)
}

// GetPost returns a post or ErrNotFound.
func (s *Content) GetPost(ctx context.Context, id int64) (BlogPost, error) {
	return s.store.GetPost(ctx, id)
}

// ListComments returns the comments on a post, oldest first.
func (s *Content) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	return s.store.ListComments(ctx, postID)
}

// CreatePost stores a new post authored by identity, dated today.
func (s *Content) CreatePost(ctx context.Context, identity *User, form PostForm) (BlogPost, error) {
	if !IsAdmin(identity) {
		return BlogPost{}, ErrForbidden
	}
	if err := form.Validate(); err != nil {
		return BlogPost{}, err
	}
	p, err := s.store.InsertPost(ctx, BlogPost{
		AuthorID: identity.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     s.now().Format(PostDateLayout),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if err != nil {
		return BlogPost{}, titleConflict(err)
	}
	s.log.Info().Int64("post_id", p.ID).Int64("author_id", identity.ID).Msg("post created")
	return p, nil
}

// UpdatePost replaces the title, subtitle, body and image of a post. The
// editor becomes the post's author; the date is kept.
func (s *Content) UpdatePost(ctx context.Context, identity *User, id int64, form PostForm) (BlogPost, error) {
	if !IsAdmin(identity) {
		return BlogPost{}, ErrForbidden
	}
	if err := form.Validate(); err != nil {
		return BlogPost{}, err
	}
	p, err := s.store.UpdatePost(ctx, BlogPost{
		ID:       id,
		AuthorID: identity.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if err != nil {
		return BlogPost{}, titleConflict(err)
	}
	s.log.Info().Int64("post_id", p.ID).Int64("author_id", identity.ID).Msg("post updated")
	return p, nil
}

// DeletePost removes a post together with its comments.
func (s *Content) DeletePost(ctx context.Context, identity *User, id int64) error {
	if !IsAdmin(identity) {
		return ErrForbidden
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("post_id", id).Msg("post deleted")
	return nil
}

// AddComment appends a comment by identity to a post. Anonymous callers get
// ErrUnauthenticated and nothing is stored.
func (s *Content) AddComment(ctx context.Context, identity *User, postID int64, text string) (Comment, error) {
	if identity == nil {
		return Comment{}, ErrUnauthenticated
	}
	form := CommentForm{Comment: text}
	if err := form.Validate(); err != nil {
		return Comment{}, err
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return Comment{}, err
	}
	c, err := s.store.InsertComment(ctx, Comment{
		PostID:   postID,
		AuthorID: identity.ID,
		Text:     form.Comment,
	})
	if err != nil {
		return Comment{}, err
	}
	s.log.Info().Int64("post_id", postID).Int64("comment_id", c.ID).Msg("comment added")
	return c, nil
}

// titleConflict reports a duplicate title as a form error on the title field.
func titleConflict(err error) error {
	if errors.Is(err, ErrDuplicateTitle) {
		ve := &ValidationError{}
		ve.add("title", "A post with this title already exists.")
		return ve
	}
	return err
}
