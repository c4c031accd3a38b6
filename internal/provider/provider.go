// Package provider defines the carrier strategy interface and the registry
// that selects a strategy for a canonical message.
package provider

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/shineum/mms-parser/internal/email"
)

// Provider is the interface that carrier strategies must implement.
// Each provider recognises the messages of one carrier and extracts the
// carrier-normalized record from them.
type Provider interface {
	// Name returns the human-readable name of this provider.
	Name() string

	// Match reports whether this provider handles msg.
	Match(msg *email.Message) bool

	// Parse builds the carrier record for msg. It must not modify msg.
	Parse(msg *email.Message) (*email.Parsed, error)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{5,15}$`)

// Address returns the bare address of a From header value, or the trimmed
// value itself when it does not parse as an address.
func Address(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	return addr.Address
}

// PhoneNumber returns the local part of the sender address when it is a
// phone number, as MMS gateways write it, and "" otherwise.
func PhoneNumber(from string) string {
	local, _, ok := strings.Cut(Address(from), "@")
	if !ok || !phonePattern.MatchString(local) {
		return ""
	}
	return local
}
