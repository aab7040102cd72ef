package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user submitted text and trims the
// surrounding whitespace. All post and comment text passes through here
// before it is stored.
func Sanitize(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}
