package utils

import (
	"errors"
	"net/mail"
	"strings"
)

var errInvalidEmail = errors.New("invalid email format")

// NormalizeIdentity trims and lower-cases a username or email.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateEmail accepts a bare RFC 5322 addr-spec whose domain has at least
// two non-empty labels. Display names and angle brackets are rejected.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return errInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	labels := strings.Split(email[at+1:], ".")
	if len(labels) < 2 {
		return errInvalidEmail
	}
	for _, label := range labels {
		if label == "" {
			return errInvalidEmail
		}
	}
	return nil
}

// AnyBlank reports whether any field is empty after trimming.
func AnyBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
