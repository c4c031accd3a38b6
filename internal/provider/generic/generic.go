// Package generic implements the fallback Provider used when no carrier
// provider recognises a message.
package generic

import (
	"fmt"

	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/provider"
)

// Name is the name the fallback provider registers under.
const Name = "generic"

// Provider copies the canonical message into a record unchanged.
type Provider struct{}

// New creates the fallback Provider.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Match accepts every message.
func (p *Provider) Match(_ *email.Message) bool {
	return true
}

// Parse copies the header fields and body text and clones the attachments
// so the record owns its own payloads.
func (p *Provider) Parse(msg *email.Message) (*email.Parsed, error) {
	return Copy(msg, Name)
}

// Copy builds a record from msg. Carrier providers start from it and apply
// their own rules.
func Copy(msg *email.Message, name string) (*email.Parsed, error) {
	parsed := &email.Parsed{
		Header:      msg.Header,
		BodyText:    msg.BodyText,
		PhoneNumber: provider.PhoneNumber(msg.From),
		Provider:    name,
	}

	for i := range msg.Attachments {
		att, err := msg.Attachments[i].Clone()
		if err != nil {
			parsed.Close()
			return nil, fmt.Errorf("failed to copy attachments: %w", err)
		}
		parsed.Attachments = append(parsed.Attachments, att)
	}
	return parsed, nil
}
