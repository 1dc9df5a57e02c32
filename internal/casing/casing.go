// Пакет casing — преобразование стиля идентификаторов между внешним
// представлением (camelCase) и соглашением столбцов PostgreSQL (snake_case).
package casing

import (
	"strings"
	"unicode"
)

// ToSnake преобразует идентификатор в snake_case.
// Принимает camelCase, PascalCase, kebab-case и имена с пробелами:
// "createdAt" → "created_at", "Is Public" → "is_public".
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	prevLower := false
	for _, r := range s {
		switch {
		case r == '-' || r == ' ' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

// ToCamel преобразует идентификатор в camelCase:
// "created_at" → "createdAt", "is-public" → "isPublic".
func ToCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upperNext := false
	first := true
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upperNext = !first
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			first = false
		case first:
			b.WriteRune(unicode.ToLower(r))
			first = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
