// Package views holds the site's templates. Each page is an html/template
// set (layout + page) wrapped as a templ.Component, so the handlers stay
// agnostic of how pages are produced.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/portfolio"
	"github.com/eringen/portfolio/markdown"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"markdown": func(s string) template.HTML {
		return template.HTML(markdown.RenderHTML(s))
	},
	"gravatar": func(email string) string {
		return portfolio.GravatarURL(email, 100)
	},
	"postJSONLD": func(p portfolio.Page, post portfolio.BlogPost) template.JS {
		return template.JS(BlogPostingJsonLD(p, post))
	},
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{
		"landing", "blog", "post", "register", "login", "make-post", "contact", "error",
	} {
		pages[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(files, "templates/layout.html", "templates/"+name+".html"))
	}
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages[name].ExecuteTemplate(w, "layout", data)
	})
}

// Funcs returns the ViewFuncs for portfolio.New.
func Funcs() portfolio.ViewFuncs {
	return portfolio.ViewFuncs{
		Landing:     Landing,
		Blog:        Blog,
		Post:        Post,
		Register:    Register,
		Login:       Login,
		MakePost:    MakePost,
		Contact:     Contact,
		Forbidden:   Forbidden,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Landing renders the home page.
func Landing(p portfolio.Page) templ.Component {
	return render("landing", p)
}

type blogData struct {
	portfolio.Page
	Posts []portfolio.BlogPost
}

// Blog renders the list of posts.
func Blog(p portfolio.Page, posts []portfolio.BlogPost) templ.Component {
	return render("blog", blogData{Page: p, Posts: posts})
}

type postData struct {
	portfolio.Page
	Post     portfolio.BlogPost
	Comments []portfolio.Comment
	Form     portfolio.CommentForm
	Errors   map[string]string
}

// Post renders a post with its comments and the comment form.
func Post(p portfolio.Page, post portfolio.BlogPost, comments []portfolio.Comment, form portfolio.CommentForm, errs map[string]string) templ.Component {
	return render("post", postData{Page: p, Post: post, Comments: comments, Form: form, Errors: errs})
}

type formData[F any] struct {
	portfolio.Page
	Form   F
	Errors map[string]string
	IsEdit bool
	Sent   bool
}

// Register renders the sign-up form.
func Register(p portfolio.Page, form portfolio.SignupForm, errs map[string]string) templ.Component {
	return render("register", formData[portfolio.SignupForm]{Page: p, Form: form, Errors: errs})
}

// Login renders the log-in form.
func Login(p portfolio.Page, form portfolio.LoginForm, errs map[string]string) templ.Component {
	return render("login", formData[portfolio.LoginForm]{Page: p, Form: form, Errors: errs})
}

// MakePost renders the create form, or the edit form when isEdit is set.
func MakePost(p portfolio.Page, form portfolio.PostForm, errs map[string]string, isEdit bool) templ.Component {
	return render("make-post", formData[portfolio.PostForm]{Page: p, Form: form, Errors: errs, IsEdit: isEdit})
}

// Contact renders the contact form, or the confirmation when sent is set.
func Contact(p portfolio.Page, form portfolio.ContactForm, errs map[string]string, sent bool) templ.Component {
	return render("contact", formData[portfolio.ContactForm]{Page: p, Form: form, Errors: errs, Sent: sent})
}

type errorData struct {
	portfolio.Page
	Code    int
	Message string
}

// Forbidden renders the 403 page.
func Forbidden(p portfolio.Page) templ.Component {
	return render("error", errorData{Page: p, Code: 403, Message: "You are not allowed to do that."})
}

// NotFound renders the 404 page.
func NotFound(p portfolio.Page) templ.Component {
	return render("error", errorData{Page: p, Code: 404, Message: "That page does not exist."})
}

// ServerError renders the 500 page.
func ServerError(p portfolio.Page) templ.Component {
	return render("error", errorData{Page: p, Code: 500, Message: "Something went wrong on our end."})
}
