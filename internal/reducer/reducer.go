// Package reducer flattens a decoded MIME part tree into a canonical message.
package reducer

import (
	"fmt"
	"log/slog"

	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/errsink"
	"github.com/shineum/mms-parser/internal/mimetree"
)

// Reducer walks part trees. A part that failed to decode is pushed to Sink
// and skipped with its subtree; its siblings are still reduced. A failure at
// the root fails the whole reduction with email.ErrAdapter.
type Reducer struct {
	Sink   *errsink.Sink
	Logger *slog.Logger
}

// New returns a Reducer reporting into sink.
func New(sink *errsink.Sink, logger *slog.Logger) *Reducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{Sink: sink, Logger: logger}
}

// Reduce builds a Message from the tree rooted at root. Payload ownership of
// attachment parts moves to the returned message; text bodies are released
// as soon as they are consumed. The message is not validated here.
func (r *Reducer) Reduce(root *mimetree.Part) (*email.Message, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: no part tree to reduce", email.ErrStructural)
	}

	msg := &email.Message{}
	if err := r.reduce(root, msg, 0); err != nil {
		msg.Close()
		return nil, err
	}
	return msg, nil
}

func (r *Reducer) reduce(p *mimetree.Part, msg *email.Message, depth int) error {
	if msg.From == "" {
		copyHeader(p, msg)
	}

	if err := p.Err(); err != nil {
		if depth == 0 {
			return fmt.Errorf("%w: %w", email.ErrAdapter, err)
		}
		r.abort(p, err)
		return nil
	}

	if p.IsLeaf() {
		// Only the root's own body stands in for the whole message text; an
		// empty nested multipart contributes nothing.
		if depth > 0 {
			return nil
		}
		text, err := p.Text()
		if err != nil {
			return fmt.Errorf("%w: %w", email.ErrAdapter, err)
		}
		msg.BodyText = text
		r.release(p)
		return nil
	}

	var pending []*mimetree.Part
	for _, child := range p.Children {
		if child == nil {
			return fmt.Errorf("%w: nil child under %s", email.ErrStructural, p.MediaType)
		}

		switch {
		case child.MediaType == "text/plain":
			text, err := child.Text()
			if err != nil {
				r.abort(child, err)
				continue
			}
			msg.BodyText += text
			r.release(child)
		case child.IsMultipart():
			pending = append(pending, child)
		default:
			if err := child.Err(); err != nil {
				r.abort(child, err)
				continue
			}
			att := email.Attachment{
				Filename:    child.Filename,
				ContentType: child.MediaType,
			}
			att.Content, att.Path = child.Take()
			msg.Attachments = append(msg.Attachments, att)
		}
	}

	for _, sub := range pending {
		if err := r.reduce(sub, msg, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reducer) abort(p *mimetree.Part, err error) {
	r.Logger.Warn("skipping undecodable subtree",
		"content_type", p.MediaType,
		"error", err,
	)
	if r.Sink != nil {
		r.Sink.Pushf("failed to decode %s part: %v", p.MediaType, err)
	}
}

func (r *Reducer) release(p *mimetree.Part) {
	if err := p.Release(); err != nil {
		r.Logger.Warn("failed to release part body", "error", err)
	}
}

func copyHeader(p *mimetree.Part, msg *email.Message) {
	msg.From = p.HeaderText("From")
	msg.To = p.HeaderText("To")
	msg.Subject = p.HeaderText("Subject")
	msg.Datetime = p.Header.Get("Date")
}
