package views

import (
	"encoding/json"
	"strconv"

	"github.com/eringen/portfolio"
)

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(p portfolio.Page, post portfolio.BlogPost) string {
	postURL := portfolio.BuildURL(p.SiteURL, "post", strconv.FormatInt(post.ID, 10))
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Subtitle,
		"url":         postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  p.SiteName,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if t, err := portfolio.ParsePostDate(post.Date); err == nil {
		data["datePublished"] = t.Format("2006-01-02")
	}
	if post.ImgURL != "" {
		data["image"] = post.ImgURL
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
