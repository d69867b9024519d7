package portfolio

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"http://localhost:3000/x", true},
		{"ftp://example.com/a.png", false},
		{"example.com/a.png", false},
		{"https://", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPostFormValidate(t *testing.T) {
	f := PostForm{}
	err := f.Validate()
	require.ErrorIs(t, err, ErrValidation)
	fields := FieldErrors(err)
	for _, k := range []string{"title", "subtitle", "img_url", "body"} {
		assert.Equal(t, requiredMsg, fields[k], k)
	}

	f = PostForm{Title: " T ", Subtitle: "S", ImgURL: "https://x.com/i.png", Body: "B\n"}
	require.NoError(t, f.Validate())
	assert.Equal(t, "T", f.Title)
	assert.Equal(t, "B", f.Body)
}

func TestSignupFormValidate(t *testing.T) {
	f := SignupForm{Email: " Bob@Example.COM ", Password: "pw", Name: " Bob "}
	require.NoError(t, f.Validate())
	assert.Equal(t, "bob@example.com", f.Email)
	assert.Equal(t, "Bob", f.Name)

	f = SignupForm{Email: "bob", Password: strings.Repeat("x", maxPasswordLen+1), Name: "Bob"}
	fields := FieldErrors(f.Validate())
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestContactFormValidate(t *testing.T) {
	f := ContactForm{Name: "Carol", Email: "carol@x.com", Phone: "555", Message: "hi"}
	assert.NoError(t, f.Validate())

	f = ContactForm{Name: "Carol", Email: "carol", Phone: "", Message: "hi"}
	fields := FieldErrors(f.Validate())
	assert.Len(t, fields, 2)
	assert.Equal(t, requiredMsg, fields["phone"])
}

func TestValidationError(t *testing.T) {
	var ve ValidationError
	assert.NoError(t, ve.err())

	ve.add("b", "second")
	ve.add("a", "first")
	ve.add("a", "ignored")
	err := ve.err()
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: a: first; b: second", err.Error())
	assert.Nil(t, FieldErrors(errors.New("other")))
}
