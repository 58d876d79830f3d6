package notify

import "github.com/microcosm-cc/bluemonday"

var commentPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips scripts, handlers and unsafe markup from user text
// before it is embedded in an HTML mail.
func SanitizeHTML(s string) string {
	return commentPolicy.Sanitize(s)
}
