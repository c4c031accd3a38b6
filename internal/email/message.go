// Package email defines the core message data model shared by the reducer,
// the cleanser and the carrier providers.
package email

import (
	"errors"
	"strings"
)

// Header holds the four header fields carried through reduction.
type Header struct {
	From     string
	To       string
	Subject  string
	Datetime string
}

// Message is the canonical, carrier-agnostic form of an MMS notification.
// It owns its attachments; call Close when the message is discarded.
type Message struct {
	Header
	BodyText    string
	Attachments []Attachment
}

// Valid reports whether the message has a sender.
func (m *Message) Valid() bool {
	return m != nil && m.From != ""
}

// Field returns a pointer to the named field, or nil for an unknown field.
func (m *Message) Field(f Field) *string {
	if f == FieldBodyText {
		return &m.BodyText
	}
	return m.Header.field(f)
}

// Close releases the payload storage of every attachment.
func (m *Message) Close() error {
	if m == nil {
		return nil
	}
	return releaseAll(m.Attachments)
}

// Parsed is the carrier-normalized record produced by a provider.
type Parsed struct {
	Header
	BodyText    string
	PhoneNumber string
	Provider    string
	Attachments []Attachment
}

// Valid reports whether the record has a sender.
func (p *Parsed) Valid() bool {
	return p != nil && p.From != ""
}

// Field returns a pointer to the named field, or nil for an unknown field.
func (p *Parsed) Field(f Field) *string {
	if f == FieldBodyText {
		return &p.BodyText
	}
	return p.Header.field(f)
}

// Images returns the attachments with an image/* media type.
func (p *Parsed) Images() []Attachment {
	return p.byMediaPrefix("image/")
}

// Videos returns the attachments with a video/* media type.
func (p *Parsed) Videos() []Attachment {
	return p.byMediaPrefix("video/")
}

func (p *Parsed) byMediaPrefix(prefix string) []Attachment {
	var out []Attachment
	for _, att := range p.Attachments {
		if strings.HasPrefix(strings.ToLower(att.ContentType), prefix) {
			out = append(out, att)
		}
	}
	return out
}

// Close releases the payload storage of every attachment.
func (p *Parsed) Close() error {
	if p == nil {
		return nil
	}
	return releaseAll(p.Attachments)
}

func (h *Header) field(f Field) *string {
	switch f {
	case FieldFrom:
		return &h.From
	case FieldTo:
		return &h.To
	case FieldSubject:
		return &h.Subject
	case FieldDatetime:
		return &h.Datetime
	}
	return nil
}

func releaseAll(atts []Attachment) error {
	var errs []error
	for i := range atts {
		if err := atts[i].Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
