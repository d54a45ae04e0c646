// Package links builds mailto and Gmail compose links for a generated email.
package links

import (
	"net/url"
	"strings"

	"github.com/mixelka/emaildraft/pkg/models"
)

const gmailCompose = "https://mail.google.com/mail/?view=cm"

// Encode percent-encodes s as a URI query component. Only unreserved
// characters stay literal; spaces become %20.
func Encode(s string) string {
	// QueryEscape already turned literal '+' into %2B, so any '+' left is a space
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Build returns the mailto and Gmail links. Body length is not limited.
func Build(recipient, subject, body string) models.MailLinks {
	encSubject := Encode(subject)
	encBody := Encode(body)

	return models.MailLinks{
		Mailto: "mailto:" + recipient + "?subject=" + encSubject + "&body=" + encBody,
		Gmail:  gmailCompose + "&su=" + encSubject + "&body=" + encBody,
	}
}
