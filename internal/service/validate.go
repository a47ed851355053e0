package service

import (
	"regexp"
	"strings"
)

// Same shape check the dashboard frontend applies: local@domain.tld with no
// whitespace. Anything stricter belongs to the email provider.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
