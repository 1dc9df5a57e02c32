package casing

import "testing"

// TestToSnake проверяет нормализацию идентификаторов в snake_case.
func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"createdAt", "created_at"},
		{"isPublic", "is_public"},
		{"title", "title"},
		{"OwnerID", "owner_id"},
		{"is-public", "is_public"},
		{"Is Public", "is_public"},
		{"already_snake", "already_snake"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ToSnake(tt.in); got != tt.want {
			t.Errorf("ToSnake(%q) = %q, ожидалось %q", tt.in, got, tt.want)
		}
	}
}

// TestToCamel проверяет преобразование в camelCase.
func TestToCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"created_at", "createdAt"},
		{"is_public", "isPublic"},
		{"title", "title"},
		{"owner_id", "ownerId"},
		{"is-public", "isPublic"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ToCamel(tt.in); got != tt.want {
			t.Errorf("ToCamel(%q) = %q, ожидалось %q", tt.in, got, tt.want)
		}
	}
}

// TestRoundTrip проверяет, что snake → camel → snake стабилен.
func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"created_at", "is_public", "title", "owner_id"} {
		if got := ToSnake(ToCamel(s)); got != s {
			t.Errorf("round-trip %q → %q", s, got)
		}
	}
}
