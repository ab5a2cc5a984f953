package dialect

import "strings"

// defaultNormalizeType lowercases the raw type name.
func defaultNormalizeType(sqlType string) string {
	return strings.ToLower(sqlType)
}
