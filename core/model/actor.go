package model

import "strings"

// Actor is the already-resolved identity performing an operation. It is
// supplied by the boundary on every invocation and never stored.
type Actor struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"isAdmin"`
}

// DeriveName builds a display name from the local part of an email address:
// "jane.a-doe@x" becomes "Jane A Doe".
func DeriveName(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return ""
	}
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
