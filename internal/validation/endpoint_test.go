package validation

import (
	"testing"
)

func TestEndpointValidator_ValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"plain host gets http", "localhost:8080", "http://localhost:8080", false},
		{"https kept", "https://contacts.internal.dev/", "https://contacts.internal.dev", false},
		{"query and fragment dropped", "http://api.acme.io/v1/?x=1#top", "http://api.acme.io/v1", false},
		{"whitespace trimmed", "  http://10.0.0.5:9000  ", "http://10.0.0.5:9000", false},
		{"empty", "", "", true},
		{"ftp scheme", "ftp://files.acme.io", "", true},
		{"script chars", "http://acme.io/<script>", "", true},
		{"credentials", "http://user:pw@acme.io", "", true},
		{"traversal", "http://acme.io/a/../b", "", true},
		{"unspecified address", "http://0.0.0.0:8080", "", true},
	}

	v := NewEndpointValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndNormalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStrictEndpointValidator(t *testing.T) {
	v := NewStrictEndpointValidator()
	for _, input := range []string{
		"http://localhost:8080",
		"http://127.0.0.1",
		"http://192.168.1.10",
		"http://api.localhost",
	} {
		if _, err := v.ValidateAndNormalize(input); err == nil {
			t.Errorf("expected %q to be rejected", input)
		}
	}
	if _, err := v.ValidateAndNormalize("https://api.acme.io"); err != nil {
		t.Errorf("public host rejected: %v", err)
	}
}

func TestEndpointValidator_TooLong(t *testing.T) {
	v := NewEndpointValidator()
	v.MaxLength = 20
	if _, err := v.ValidateAndNormalize("http://a-very-long-hostname.io"); err == nil {
		t.Error("expected length error")
	}
}
