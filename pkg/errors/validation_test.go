package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "./gtfs", false},
		{"absolute", "/var/lib/feeds/gtfs.zip", false},
		{"with spaces", "my feeds/gtfs", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.org/gtfs.zip", false},
		{"http://localhost:8080/feed.zip", false},
		{"", true},
		{"ftp://example.org/gtfs.zip", true},
		{"example.org/gtfs.zip", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFeedLocation(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"./gtfs", false},
		{"feed.zip", false},
		{"https://example.org/gtfs.zip", false},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFeedLocation(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFeedLocation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "line-1", false},
		{"nested", "metro/line-1", false},
		{"unicode", "ligne-république", false},

		{"empty", "", true},
		{"at", "@", true},
		{"leading dash", "-line", true},
		{"leading dot", ".line", true},
		{"trailing slash", "line/", true},
		{"lock suffix", "line.lock", true},
		{"double dot", "a..b", true},
		{"reflog syntax", "a@{1}", true},
		{"space", "line 1", true},
		{"colon", "line:1", true},
		{"tilde", "line~1", true},
		{"backslash", `line\1`, true},
		{"control", "line\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBranchName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBranchName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
