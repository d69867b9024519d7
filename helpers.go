package portfolio

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// GravatarURL returns the avatar image URL for email: 100px, rated g, with
// the "retro" fallback.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", strconv.Itoa(size))
	q.Set("r", "g")
	q.Set("d", "retro")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}

// ParsePostDate parses a BlogPost.Date value.
func ParsePostDate(s string) (time.Time, error) {
	return time.Parse(PostDateLayout, s)
}

// postID reads the :id path parameter. Anything but a positive integer is a 404.
func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}
