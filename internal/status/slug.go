package status

import "strings"

// Slugify turns a label into a status value. Strings made only of
// [A-Za-z0-9_-] are kept as they are ("inProgress"); anything else is
// lowercased with each run of other characters collapsed into one dash
// ("Code Review!" -> "code-review").
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if isMachineSafe(s) {
		return s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func isMachineSafe(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
