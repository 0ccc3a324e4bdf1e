package database

import "strings"

// mutationKeywords are the leading keywords that make a statement run inside
// a transaction.
var mutationKeywords = []string{"UPDATE", "INSERT", "DELETE"}

// IsMutation reports whether stmt starts with UPDATE, INSERT or DELETE once
// surrounding whitespace is trimmed, ignoring case. Only the prefix is
// inspected: "WITH x AS (...) UPDATE ..." is a read, and so is a statement
// preceded by a comment.
func IsMutation(stmt string) bool {
	s := strings.ToUpper(strings.TrimSpace(stmt))
	for _, kw := range mutationKeywords {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}
