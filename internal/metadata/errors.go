package metadata

import "errors"

// Error taxonomy. Every failure returned by the store wraps one of these
// sentinels so callers can classify with errors.Is.
var (
	// ErrSchemaConflict marks duplicate table names, duplicate override
	// targets and repeated primary-key declarations.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrReference marks relationship problems: unknown parent, parent
	// without a primary key, incompatible key subtypes.
	ErrReference = errors.New("invalid reference")

	// ErrKeyViolation marks a declared primary key that is absent from the
	// data or whose sampled values are not unique and non-null.
	ErrKeyViolation = errors.New("key violation")

	// ErrMalformedDocument marks a serialized document that cannot be
	// reconstructed into a valid store.
	ErrMalformedDocument = errors.New("malformed document")
)
