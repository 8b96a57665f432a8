package insights

import (
	"net/url"
	"strings"
)

// MailtoURL builds the mailto link that opens a prefilled report email.
// Spaces are percent-encoded; mail clients do not decode '+'.
func MailtoURL(recipient, subject, body string) string {
	q := url.Values{}
	q.Set("subject", subject)
	q.Set("body", body)
	query := strings.ReplaceAll(q.Encode(), "+", "%20")
	return "mailto:" + recipient + "?" + query
}
