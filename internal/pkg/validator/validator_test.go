package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@com", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"2025-01-15", true},
		{"2025-12-31", true},
		{"2025-13-01", false},
		{"2025-02-30", false},
		{"15-01-2025", false},
		{"2025/01/15", false},
		{"", false},
	}
	for _, c := range cases {
		if _, got := IsValidDate(c.input); got != c.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"09:00", true},
		{"23:59", true},
		{"00:00", true},
		{"24:00", false},
		{"9:00", false},
		{"09:60", false},
		{"09-00", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsValidTimeOfDay(c.input); got != c.want {
			t.Errorf("IsValidTimeOfDay(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := []string{
		"2025-01-15T10:30:00Z",
		"2025-01-15T10:30:00+09:00",
		"2025-01-15T10:30:00.123456789Z",
	}
	invalid := []string{"2025-01-15", "2025-01-15 10:30:00", "not-a-time", ""}
	for _, value := range valid {
		if _, ok := IsValidDateTime(value); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", value)
		}
	}
	for _, value := range invalid {
		if _, ok := IsValidDateTime(value); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", value)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	roles := []string{"staff", "approver", "admin"}
	if !IsInSlice("approver", roles) {
		t.Error(`IsInSlice("approver") = false, want true`)
	}
	if IsInSlice("owner", roles) {
		t.Error(`IsInSlice("owner") = true, want false`)
	}
	if IsInSlice("staff", nil) {
		t.Error(`IsInSlice on nil slice = true, want false`)
	}
}

func TestValidationErrorsToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "email must be a valid address"},
		{Field: "name", Message: "name is required"},
	}

	m := errs.ToMap()
	if len(m) != 2 {
		t.Fatalf("ToMap returned %d entries, want 2", len(m))
	}
	if m["email"] != "email must be a valid address" {
		t.Errorf("ToMap()[email] = %q", m["email"])
	}
	if errs.Error() == "" {
		t.Error("Error() returned empty string")
	}
}
