package grammar

import "regexp"

// TokenPattern is the canonical token shape shared by names, segment tokens
// and vocabulary entries.
var TokenPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidToken reports whether s is a well-formed token: lowercase snake_case,
// starting with a letter, no double underscores, no trailing underscore.
func ValidToken(s string) bool {
	if !TokenPattern.MatchString(s) {
		return false
	}
	if s[len(s)-1] == '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '_' && s[i-1] == '_' {
			return false
		}
	}
	return true
}
