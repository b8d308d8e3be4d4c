// redact маскирует чувствительные значения перед записью в лог.
package redact

import "strings"

// Username оставляет первые два символа логина.
func Username(s string) string {
	if s == "" {
		return ""
	}

	if len(s) > 2 {
		return s[:2] + "***"
	}

	return "***"
}

// Token скрывает токен целиком, но различает "нет токена" и "есть токен".
func Token(tok string) string {
	if strings.TrimSpace(tok) == "" {
		return "[EMPTY]"
	}

	return "[REDACTED_TOKEN]"
}

func Password() string { return "[REDACTED_PASSWORD]" }
