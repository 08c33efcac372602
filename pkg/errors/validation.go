package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateEntityID validates an entity identifier taken from a schema record.
// IDs end up in DOT node names, cache keys and URLs, so control characters
// and quotes are rejected. Empty IDs are rejected as well.
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "entity id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "entity id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "entity id contains control characters")
		}
	}
	if strings.ContainsAny(id, "\"\\") {
		return New(ErrCodeInvalidInput, "entity id %q contains quotes or backslashes", id)
	}
	return nil
}

// ValidateSourceURL validates the URL of an HTTP schema provider.
// Only absolute http and https URLs are accepted.
func ValidateSourceURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidSource, "source URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidSource, err, "parse source URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidSource, "source URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidSource, "source URL has no host")
	}
	return nil
}

// ValidatePath validates a local schema file path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	return nil
}
