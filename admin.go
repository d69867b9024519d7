package portfolio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleNewPost(c echo.Context) error {
	var form PostForm
	if c.Request().Method == http.MethodGet {
		return Render(c, a.Views.MakePost(a.page(c, "New Post"), form, nil, false))
	}
	if err := c.Bind(&form); err != nil {
		return err
	}
	_, err := a.Content.CreatePost(c.Request().Context(), CurrentIdentity(c), form)
	if errors.Is(err, ErrValidation) {
		errs := FieldErrors(err)
		return renderForm(c, errs, a.Views.MakePost(a.page(c, "New Post"), form, errs, false))
	}
	if err != nil {
		return a.contentError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/blog")
}

func (a *App) handleEditPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := a.Content.GetPost(ctx, id)
	if err != nil {
		return a.contentError(err)
	}
	if c.Request().Method == http.MethodGet {
		return Render(c, a.Views.MakePost(a.page(c, "Edit Post"), PostFormFrom(post), nil, true))
	}

	var form PostForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	updated, err := a.Content.UpdatePost(ctx, CurrentIdentity(c), id, form)
	if errors.Is(err, ErrValidation) {
		errs := FieldErrors(err)
		return renderForm(c, errs, a.Views.MakePost(a.page(c, "Edit Post"), form, errs, true))
	}
	if err != nil {
		return a.contentError(err)
	}
	return c.Redirect(http.StatusSeeOther, updated.Link)
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	if err := a.Content.DeletePost(c.Request().Context(), CurrentIdentity(c), id); err != nil {
		return a.contentError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/blog")
}
