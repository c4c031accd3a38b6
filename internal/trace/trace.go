// Package trace writes human-readable dumps of parse results for debug output.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/mimetree"
)

const separator = "========================================\n"

// Writer prints messages, records and part trees in a readable format.
type Writer struct {
	w io.Writer
}

// NewWithWriter creates a Writer that writes to w.
func NewWithWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Message prints a canonical message.
func (t *Writer) Message(msg *email.Message) {
	var b strings.Builder

	b.WriteString(separator)
	writeHeader(&b, "message", msg.Header)
	b.WriteString("Body:\n")
	b.WriteString(msg.BodyText + "\n")
	writeAttachments(&b, msg.Attachments)
	b.WriteString(separator)

	// Trace output is best effort.
	fmt.Fprint(t.w, b.String())
}

// Parsed prints a provider record.
func (t *Writer) Parsed(p *email.Parsed) {
	var b strings.Builder

	b.WriteString(separator)
	writeHeader(&b, "parsed by "+p.Provider, p.Header)
	if p.PhoneNumber != "" {
		fmt.Fprintf(&b, "Phone: %s\n", p.PhoneNumber)
	}
	b.WriteString("Body:\n")
	b.WriteString(p.BodyText + "\n")
	writeAttachments(&b, p.Attachments)
	b.WriteString(separator)

	fmt.Fprint(t.w, b.String())
}

// Tree prints one line per part, indented by depth.
func (t *Writer) Tree(root *mimetree.Part) {
	var b strings.Builder
	root.Walk(func(p *mimetree.Part, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(p.MediaType)
		if p.Filename != "" {
			fmt.Fprintf(&b, " %q", p.Filename)
		}
		if p.IsLeaf() {
			if data, err := p.Body(); err == nil {
				fmt.Fprintf(&b, " (%s)", formatSize(int64(len(data))))
			} else {
				fmt.Fprintf(&b, " (error: %v)", err)
			}
		}
		b.WriteString("\n")
	})
	fmt.Fprint(t.w, b.String())
}

func writeHeader(b *strings.Builder, title string, h email.Header) {
	fmt.Fprintf(b, "[%s]\n", title)
	fmt.Fprintf(b, "From: %s\n", h.From)
	if h.To != "" {
		fmt.Fprintf(b, "To: %s\n", h.To)
	}
	fmt.Fprintf(b, "Subject: %s\n", h.Subject)
	if h.Datetime != "" {
		fmt.Fprintf(b, "Date: %s\n", h.Datetime)
	}
}

func writeAttachments(b *strings.Builder, atts []email.Attachment) {
	if len(atts) == 0 {
		return
	}
	names := make([]string, 0, len(atts))
	for i := range atts {
		att := &atts[i]
		name := att.Filename
		if name == "" {
			name = "(unnamed)"
		}
		names = append(names, fmt.Sprintf("%s [%s] (%s)", name, att.ContentType, formatSize(att.Size())))
	}
	fmt.Fprintf(b, "Attachments: %s\n", strings.Join(names, ", "))
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
