package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"sqlite:///blog.db", "blog.db", false},
		{"sqlite:////var/lib/blog.db", "/var/lib/blog.db", false},
		{"sqlite://data/blog.db", "data/blog.db", false},
		{"data/blog.db", "data/blog.db", false},
		{"postgres://localhost/blog", "", true},
		{"sqlite:///", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDatabaseURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := SiteConfig{URL: "https://example.com/", Mail: MailConfig{Username: "me@x.com"}}
	cfg.setDefaults()

	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data/blog.db", cfg.DatabasePath)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "me@x.com", cfg.Mail.To)
	assert.Equal(t, 30*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, 5, cfg.LoginAttempts)
	assert.Equal(t, time.Minute, cfg.LoginWindow)
}

func TestSetDefaultsNegativeValues(t *testing.T) {
	cfg := SiteConfig{
		LoginAttempts: -3,
		LoginWindow:   -time.Minute,
		MailQueueSize: -1,
		Mail:          MailConfig{Port: -25, Timeout: -time.Second},
	}
	cfg.setDefaults()

	assert.Equal(t, 5, cfg.LoginAttempts)
	assert.Equal(t, time.Minute, cfg.LoginWindow)
	assert.Equal(t, 16, cfg.MailQueueSize)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 30*time.Second, cfg.Mail.Timeout)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("BLOG_EMAIL", "owner@x.com")
	t.Setenv("BLOG_PW", "apppw")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("DATABASE_URL", "sqlite:///posts.db")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, "owner@x.com", cfg.Mail.Username)
	assert.Equal(t, "apppw", cfg.Mail.Password)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.Equal(t, "posts.db", cfg.DatabasePath)

	t.Setenv("SMTP_PORT", "abc")
	_, err = ConfigFromEnv()
	assert.Error(t, err)
}
