package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a local filesystem path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
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

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateFeedLocation accepts either an http(s) URL or a local path.
func ValidateFeedLocation(loc string) error {
	if IsURL(loc) {
		return ValidateURL(loc)
	}
	return ValidatePath(loc)
}

// ValidateBranchName checks a name against the git ref-format rules that
// matter for branch names under refs/heads.
func ValidateBranchName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBranch, "branch name cannot be empty")
	}
	if name == "@" {
		return New(ErrCodeInvalidBranch, "branch name cannot be %q", name)
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidBranch, "branch name %q has an invalid leading character", name)
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") {
		return New(ErrCodeInvalidBranch, "branch name %q has an invalid suffix", name)
	}

	for _, pattern := range []string{"..", "//", "@{", "/."} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidBranch, "branch name %q contains %q", name, pattern)
		}
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return New(ErrCodeInvalidBranch, "branch name %q contains whitespace or control characters", name)
		}
		if strings.ContainsRune(`~^:?*[\`, r) {
			return New(ErrCodeInvalidBranch, "branch name %q contains %q", name, r)
		}
	}

	return nil
}
