package metadata

import "strings"

// Column-name tokens that conventionally mark a key column. The map folds
// common abbreviations onto their canonical meaning so that names like
// "usr_uid" or "order_pk" are still recognized.
var keyTokens = map[string]string{
	"id":  "id",
	"uid": "id",
	"pid": "id",
	"mid": "id",
	"key": "key",
	"pk":  "key",
	"fk":  "key",
}

// KeyLikeName reports whether a column name marks the column as a primary or
// foreign key by naming convention. Only the trailing token counts: "paid"
// is not a key, "user_id" is.
func KeyLikeName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := keyTokens[n]; ok {
		return true
	}
	if i := strings.LastIndex(n, "_"); i >= 0 {
		_, ok := keyTokens[n[i+1:]]
		return ok
	}
	return false
}
