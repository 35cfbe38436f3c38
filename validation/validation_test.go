package validation

import "testing"

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("title", "  ", v)
	Email("email", "not-an-email", v)
	MinLength("password", "abc", 6, v)
	Match("confirm", "abc", "abd", v)
	Required("name", "Budi", v)
	Email("other", "", v)

	want := map[string]string{
		"title":    "required",
		"email":    "invalid_email",
		"password": "too_short",
		"confirm":  "mismatch",
	}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for f, code := range want {
		if v[f] != code {
			t.Errorf("%s: got %q, want %q", f, v[f], code)
		}
	}
}

func TestFirstViolationWins(t *testing.T) {
	v := Violations{}
	Required("email", "", v)
	Email("email", "", v)
	if v["email"] != "required" {
		t.Fatalf("expected required, got %q", v["email"])
	}
	ok := Violations{}
	Email("email", "a@example.org", ok)
	if !ok.Empty() {
		t.Fatalf("valid email flagged: %v", ok)
	}
}
