package validator

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, email := range []string{"", "alice", "alice@", "@example.com", "a b@example.com"} {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("alice_01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, username := range []string{"ab", "has space", "dash-ed", strings.Repeat("a", 31)} {
		if err := ValidateUsername(username); err != ErrInvalidUsername {
			t.Fatalf("expected ErrInvalidUsername for %q, got %v", username, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("hunter22secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePassword("short"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword for short input, got %v", err)
	}
	if err := ValidatePassword(strings.Repeat("a", 73)); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword beyond the bcrypt cap, got %v", err)
	}
}
