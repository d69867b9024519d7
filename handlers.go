package portfolio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	msgDuplicateEmail = "You've already signed up with this email, log in instead."
	msgWrongPassword  = "Wrong password, please try again."
	msgUnknownEmail   = "Email doesn't exist in our database, please Sign Up."
	msgLoginToComment = "You need to login or register to comment."
	msgTooManyLogins  = "Too many login attempts. Try again later."
	msgContactFailed  = "Your message could not be sent right now. Please try again later."
)

// page collects the per-request template state. Call it before writing the
// response: reading flashes rewrites the session cookie.
func (a *App) page(c echo.Context, title string) Page {
	identity := CurrentIdentity(c)
	return Page{
		SiteName:  a.Config.Name,
		SiteURL:   a.Config.URL,
		Title:     title,
		Identity:  identity,
		IsAdmin:   IsAdmin(identity),
		Flashes:   popFlashes(c),
		CSRFToken: CsrfToken(c),
	}
}

func (a *App) handleLanding(c echo.Context) error {
	return Render(c, a.Views.Landing(a.page(c, "")))
}

func (a *App) handleBlog(c echo.Context) error {
	posts, err := a.Content.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(a.page(c, "Blog"), posts))
}

func (a *App) handleRegister(c echo.Context) error {
	var form SignupForm
	if c.Request().Method == http.MethodGet {
		return Render(c, a.Views.Register(a.page(c, "Register"), form, nil))
	}
	if err := c.Bind(&form); err != nil {
		return err
	}
	u, err := a.Auth.Register(c.Request().Context(), form.Email, form.Password, form.Name)
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		if err := addFlash(c, msgDuplicateEmail); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, ErrValidation):
		form.Password = ""
		errs := FieldErrors(err)
		return renderForm(c, errs, a.Views.Register(a.page(c, "Register"), form, errs))
	case err != nil:
		return err
	}
	if err := startSession(c, u); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog")
}

func (a *App) handleLogin(c echo.Context) error {
	var form LoginForm
	if c.Request().Method == http.MethodGet {
		return Render(c, a.Views.Login(a.page(c, "Log In"), form, nil))
	}
	ip := c.RealIP()
	if !a.loginLimiter.Allow(ip) {
		return c.String(http.StatusTooManyRequests, msgTooManyLogins)
	}
	if err := c.Bind(&form); err != nil {
		return err
	}
	u, err := a.Auth.Login(c.Request().Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, ErrUnknownEmail), errors.Is(err, ErrWrongPassword):
		a.loginLimiter.Fail(ip)
		a.Log.Debug().Str("ip", ip).Err(err).Msg("login failed")
		msg := msgWrongPassword
		if errors.Is(err, ErrUnknownEmail) {
			msg = msgUnknownEmail
		}
		if err := addFlash(c, msg); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, ErrValidation):
		form.Password = ""
		errs := FieldErrors(err)
		return renderForm(c, errs, a.Views.Login(a.page(c, "Log In"), form, errs))
	case err != nil:
		return err
	}
	a.loginLimiter.Reset(ip)
	if err := startSession(c, u); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := endSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog")
}

func (a *App) handlePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := a.Content.GetPost(ctx, id)
	if err != nil {
		return a.contentError(err)
	}

	var form CommentForm
	var errs map[string]string
	if c.Request().Method == http.MethodPost {
		if err := c.Bind(&form); err != nil {
			return err
		}
		_, err := a.Content.AddComment(ctx, CurrentIdentity(c), id, form.Comment)
		switch {
		case errors.Is(err, ErrUnauthenticated):
			if err := addFlash(c, msgLoginToComment); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		case errors.Is(err, ErrValidation):
			errs = FieldErrors(err)
		case err != nil:
			return a.contentError(err)
		default:
			return c.Redirect(http.StatusSeeOther, post.Link)
		}
	}

	comments, err := a.Content.ListComments(ctx, id)
	if err != nil {
		return err
	}
	return renderForm(c, errs, a.Views.Post(a.page(c, post.Title), post, comments, form, errs))
}

func (a *App) handleContact(c echo.Context) error {
	var form ContactForm
	if c.Request().Method == http.MethodGet {
		return Render(c, a.Views.Contact(a.page(c, "Contact"), form, nil, false))
	}
	if err := c.Bind(&form); err != nil {
		return err
	}
	err := a.Contact.Send(c.Request().Context(), form.Name, form.Email, form.Phone, form.Message)
	switch {
	case errors.Is(err, ErrValidation):
		errs := FieldErrors(err)
		return renderForm(c, errs, a.Views.Contact(a.page(c, "Contact"), form, errs, false))
	case err != nil:
		errs := map[string]string{"form": msgContactFailed}
		return RenderStatus(c, http.StatusServiceUnavailable, a.Views.Contact(a.page(c, "Contact"), form, errs, false))
	}
	return Render(c, a.Views.Contact(a.page(c, "Contact"), ContactForm{}, nil, true))
}

// contentError maps service errors onto HTTP errors.
func (a *App) contentError(err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		return echo.ErrNotFound
	}
	return err
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(a.page(c, "Not Found")))
	case code == http.StatusForbidden:
		_ = RenderStatus(c, code, a.Views.Forbidden(a.page(c, "Forbidden")))
	case code >= 500:
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, "Error")))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
