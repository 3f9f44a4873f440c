// Package validation holds the field validators for the link registration
// form. Each validator returns an error description, or "" when the value is
// acceptable, so handlers can collect per-field errors for the frontend.
package validation

import (
	"net/url"
	"strings"
	"unicode"
)

// Validator is a function that validates a string value and returns an error
// description if invalid.
type Validator func(v string) string

// reservedNames are the route namespaces a link may never shadow.
var reservedNames = []string{"api", "admin", "js", "css", "login", "callback"}

// LinkName validates a caller-chosen short name: non-empty, only
// alphanumerics, '-' or '_' (so never a path separator), and not equal to a
// reserved route name.
func LinkName() Validator {
	return func(v string) string {
		if v == "" {
			return "Name cannot be empty."
		}
		if isReservedName(v) {
			return "Forbidden name."
		}
		if !validNameChars(v) {
			return "Invalid characters in name!"
		}
		return ""
	}
}

// AbsoluteURL validates that a value parses as an absolute http(s) URL with a
// host. Anything else, including relative references, is rejected.
func AbsoluteURL() Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return "URL is required."
		}
		p, err := url.Parse(v)
		if err != nil || (p.Scheme != "http" && p.Scheme != "https") || p.Host == "" {
			return "Enter a valid http(s) URL."
		}
		return ""
	}
}

func isReservedName(v string) bool {
	for _, name := range reservedNames {
		if v == name {
			return true
		}
	}
	return false
}

func validNameChars(v string) bool {
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
