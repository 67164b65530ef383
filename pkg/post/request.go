// Package post defines the article submitted by a run and the input
// normalisation applied before it reaches the browser.
package post

import (
	"fmt"
	"strings"
)

// Request is a single article to post. It is built once from CLI input and
// discarded when the run ends.
type Request struct {
	Title string
	Body  string

	// ThumbnailPath is stored as given; ResolveThumbnail decides whether it is usable
	ThumbnailPath string

	// Tags are submitted in slice order
	Tags []string

	// Publish selects the publish flow; false saves a draft
	Publish bool
}

// NewRequest validates the raw inputs and builds a Request.
// The thumbnail path is stored as given; use ResolveThumbnail before uploading.
func NewRequest(title, body, thumbnail, tags string, publish bool) (Request, error) {
	if strings.TrimSpace(title) == "" {
		return Request{}, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(body) == "" {
		return Request{}, fmt.Errorf("body is required")
	}

	return Request{
		Title:         title,
		Body:          body,
		ThumbnailPath: thumbnail,
		Tags:          ParseTags(tags),
		Publish:       publish,
	}, nil
}

// Mode returns "publish" or "draft".
func (r Request) Mode() string {
	if r.Publish {
		return "publish"
	}
	return "draft"
}

// ParseTags splits a comma separated list, trimming whitespace and dropping
// empty entries while preserving order.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
