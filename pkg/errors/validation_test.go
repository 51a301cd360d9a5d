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
		{"relative file", "data.json", false},
		{"relative dir", "./result_data", false},
		{"absolute", "/tmp/out", false},
		{"parent", "../data.json", false},

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

func TestValidateURLTemplate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"positron", "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png", false},
		{"plain http", "http://localhost:8080/{z}/{x}/{y}.png", false},

		{"empty", "", true},
		{"ftp scheme", "ftp://tiles/{z}/{x}/{y}.png", true},
		{"missing z", "https://tiles/{x}/{y}.png", true},
		{"missing y", "https://tiles/{z}/{x}.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURLTemplate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURLTemplate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChoice(t *testing.T) {
	if err := ValidateChoice("backend", "redis", "file", "redis", "none"); err != nil {
		t.Errorf("valid choice rejected: %v", err)
	}
	err := ValidateChoice("backend", "mongo", "file", "redis", "none")
	if err == nil {
		t.Fatal("invalid choice accepted")
	}
	if !strings.Contains(err.Error(), "file, redis, none") {
		t.Errorf("error should list allowed values: %v", err)
	}
	if !IsClientError(err) {
		t.Error("config errors should be client errors")
	}
}
