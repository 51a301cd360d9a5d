package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a local file or directory path supplied by the user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//
// Absolute paths and ".." are allowed: the CLI reads and writes wherever the
// caller points it.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURLTemplate checks a tile URL template.
// It must use http or https and contain the {z}, {x} and {y} placeholders.
func ValidateURLTemplate(tmpl string) error {
	if tmpl == "" {
		return New(ErrCodeInvalidConfig, "tile URL cannot be empty")
	}
	if !strings.HasPrefix(tmpl, "http://") && !strings.HasPrefix(tmpl, "https://") {
		return New(ErrCodeInvalidConfig, "tile URL must use http or https scheme")
	}
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(tmpl, p) {
			return New(ErrCodeInvalidConfig, "tile URL is missing the %s placeholder", p)
		}
	}
	return nil
}

// ValidateChoice checks that value is one of allowed.
func ValidateChoice(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "invalid %s: %q (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}
