package email

import "errors"

// Failure kinds reported by the parser. Callers match them with errors.Is.
var (
	// ErrAdapter means the MIME decoder could not decode the input at all.
	ErrAdapter = errors.New("mime decode failed")
	// ErrStructural means the part tree was absent or malformed.
	ErrStructural = errors.New("malformed part tree")
	// ErrValidation means a message was built but has no sender.
	ErrValidation = errors.New("message has no sender")
	// ErrProviderNotFound means no provider matched and no fallback exists.
	ErrProviderNotFound = errors.New("no provider found")
	// ErrProviderFailure means the selected provider produced no record.
	ErrProviderFailure = errors.New("provider failed")
)
