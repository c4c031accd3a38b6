package mimetree

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

// maxDepth bounds multipart nesting.
const maxDepth = 32

func init() {
	// Carrier gateways still emit legacy single-byte charsets.
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// Adapter decodes a raw message into a part tree.
type Adapter interface {
	Parse(r io.Reader) (*Part, error)
}

// OutputDirSetter is implemented by adapters that can store part bodies on disk.
type OutputDirSetter interface {
	SetOutputDir(dir string)
}

// Decoder is the go-message backed Adapter. When an output directory is
// set, leaf bodies are streamed into scratch files there instead of memory.
type Decoder struct {
	outputDir string
	logger    *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithOutputDir stores leaf bodies as files under dir.
func WithOutputDir(dir string) Option {
	return func(d *Decoder) { d.outputDir = dir }
}

// WithLogger sets the logger used for decode warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates a Decoder. Bodies are kept in memory by default.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetOutputDir implements OutputDirSetter.
func (d *Decoder) SetOutputDir(dir string) {
	d.outputDir = dir
}

// OutputDir returns the scratch directory, or "" for in-memory bodies.
func (d *Decoder) OutputDir() string {
	return d.outputDir
}

// Parse reads a complete message from r and returns its part tree.
// Failures to read nested parts are recorded on the affected part and
// surface through Part.Err or Part.Body; only a failure at the top level
// fails the whole parse.
func (d *Decoder) Parse(r io.Reader) (*Part, error) {
	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	entity, err := message.Read(r)
	if entity == nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if err != nil {
		if !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		d.logger.Warn("decoding message with unsupported charset or encoding", "error", err)
	}

	root, err := d.build(entity, 0)
	if err != nil {
		root.ReleaseAll()
		return nil, err
	}
	return root, nil
}

func (d *Decoder) build(e *message.Entity, depth int) (*Part, error) {
	p := &Part{Header: e.Header}
	p.MediaType, p.Params = d.mediaType(e.Header)
	p.Filename = filename(e.Header)

	if !p.IsMultipart() {
		d.readBody(p, e.Body)
		return p, nil
	}

	if p.Params["boundary"] == "" {
		err := fmt.Errorf("multipart part missing boundary")
		if depth == 0 {
			return p, err
		}
		d.logger.Warn("nested multipart missing boundary, skipping")
		p.err = err
		return p, nil
	}
	if depth >= maxDepth {
		p.err = fmt.Errorf("multipart nesting deeper than %d", maxDepth)
		return p, nil
	}

	mr := e.MultipartReader()
	for {
		child, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if child == nil {
			err = fmt.Errorf("failed to read next part: %w", err)
			if depth == 0 && len(p.Children) == 0 {
				return p, err
			}
			d.logger.Warn("truncated multipart", "content_type", p.MediaType, "error", err)
			p.err = err
			break
		}
		if err != nil {
			d.logger.Warn("decoding part with unsupported charset or encoding", "error", err)
		}

		sub, err := d.build(child, depth+1)
		if err != nil {
			return p, err
		}
		p.Children = append(p.Children, sub)
	}
	return p, nil
}

// readBody consumes a leaf body. Decode errors are kept on the part so the
// reducer can report them against the subtree that produced them.
func (d *Decoder) readBody(p *Part, body io.Reader) {
	if d.outputDir == "" {
		data, err := io.ReadAll(body)
		if err != nil {
			p.err = fmt.Errorf("failed to decode %s body: %w", p.MediaType, err)
			return
		}
		p.body = data
		return
	}

	path := filepath.Join(d.outputDir, uuid.NewString()+filepath.Ext(p.Filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		p.err = fmt.Errorf("failed to create scratch file: %w", err)
		io.Copy(io.Discard, body)
		return
	}
	_, err = io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		p.err = fmt.Errorf("failed to decode %s body: %w", p.MediaType, err)
		return
	}
	p.path = path
}

// mediaType returns the lower-cased media type, defaulting to text/plain
// when the header is missing or unparseable.
func (d *Decoder) mediaType(h message.Header) (string, map[string]string) {
	if h.Get("Content-Type") == "" {
		return "text/plain", map[string]string{}
	}
	t, params, err := h.ContentType()
	if err != nil {
		d.logger.Warn("failed to parse content type, treating as plain text",
			"content_type", h.Get("Content-Type"),
			"error", err,
		)
		return "text/plain", map[string]string{}
	}
	return t, params
}

// filename checks Content-Disposition first, then the Content-Type name parameter.
func filename(h message.Header) string {
	ah := mail.AttachmentHeader{Header: h}
	name, _ := ah.Filename()
	return name
}
