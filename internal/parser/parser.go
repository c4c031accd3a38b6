// Package parser turns raw MMS notification mail into canonical messages and
// carrier records.
//
// A Parser keeps the diagnostics of every call and the last parsed message,
// so it is not safe for concurrent use. Create one per parse lifecycle.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shineum/mms-parser/internal/cleanse"
	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/errsink"
	"github.com/shineum/mms-parser/internal/mimetree"
	"github.com/shineum/mms-parser/internal/provider"
	"github.com/shineum/mms-parser/internal/provider/generic"
	"github.com/shineum/mms-parser/internal/reducer"
	"github.com/shineum/mms-parser/internal/trace"
)

// Parser is the entry point for parsing. Every failed call returns a nil
// result and an error, and also records the error text in the error list.
type Parser struct {
	adapter     mimetree.Adapter
	registry    *provider.Registry
	override    provider.Provider
	fallback    provider.Provider
	providers   []provider.Provider
	cleanser    *cleanse.Cleanser
	sink        *errsink.Sink
	logger      *slog.Logger
	tracer      *trace.Writer
	debug       bool
	debugWriter io.Writer
	logLevel    *slog.Level
	outputDir   string

	last *email.Message
}

// New creates a Parser. Without options it decodes in memory, registers
// only the generic fallback provider and applies no cleansing.
func New(opts ...Option) *Parser {
	p := &Parser{
		cleanser:    &cleanse.Cleanser{},
		sink:        errsink.New(),
		debugWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		if p.debug {
			p.logger = slog.New(slog.NewTextHandler(p.debugWriter, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
		} else if p.logLevel != nil {
			p.logger = slog.New(slog.NewTextHandler(p.debugWriter, &slog.HandlerOptions{
				Level: *p.logLevel,
			}))
		} else {
			p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	}
	if p.debug {
		p.tracer = trace.NewWithWriter(p.debugWriter)
	}

	if p.adapter == nil {
		p.adapter = mimetree.NewDecoder(
			mimetree.WithOutputDir(p.outputDir),
			mimetree.WithLogger(p.logger),
		)
	} else if s, ok := p.adapter.(mimetree.OutputDirSetter); ok && p.outputDir != "" {
		s.SetOutputDir(p.outputDir)
	}

	fallback := p.fallback
	if fallback == nil {
		fallback = generic.New()
	}
	p.registry = provider.NewRegistry(fallback, p.providers...)
	p.registry.SetLogger(p.logger)

	return p
}

// Parse reads a complete message from r.
func (p *Parser) Parse(r io.Reader) (*email.Message, error) {
	if r == nil {
		return nil, p.fail(fmt.Errorf("%w: no input", email.ErrStructural))
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, p.fail(fmt.Errorf("%w: failed to read message: %w", email.ErrAdapter, err))
	}
	return p.parse(buf.Bytes())
}

// ParseBytes parses an in-memory message.
func (p *Parser) ParseBytes(data []byte) (*email.Message, error) {
	return p.parse(data)
}

// ParseFile parses the message stored at path.
func (p *Parser) ParseFile(path string) (*email.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, p.fail(fmt.Errorf("%w: failed to open file: %w", email.ErrAdapter, err))
	}
	defer f.Close()

	return p.Parse(f)
}

// ParseSplit parses a message whose header and body arrive separately.
// The two sources are concatenated unchanged, so header must end with the
// blank line that separates it from the body.
func (p *Parser) ParseSplit(header, body io.Reader) (*email.Message, error) {
	var readers []io.Reader
	for _, r := range []io.Reader{header, body} {
		if r != nil {
			readers = append(readers, r)
		}
	}
	if len(readers) == 0 {
		return nil, p.fail(fmt.Errorf("%w: no input", email.ErrStructural))
	}
	return p.Parse(io.MultiReader(readers...))
}

// ProviderParse runs the configured or detected provider over msg, or over
// the result of the last successful parse when msg is nil.
func (p *Parser) ProviderParse(msg *email.Message) (*email.Parsed, error) {
	if msg == nil {
		msg = p.last
	}
	if msg == nil {
		return nil, p.fail(fmt.Errorf("%w: no message has been parsed", email.ErrStructural))
	}
	if !msg.Valid() {
		return nil, p.fail(fmt.Errorf("%w: cannot run provider", email.ErrValidation))
	}

	parsed, err := p.registry.Dispatch(msg, p.override)
	if err != nil {
		return nil, p.fail(err)
	}

	p.cleanser.Apply(parsed)
	if !parsed.Valid() {
		parsed.Close()
		return nil, p.fail(fmt.Errorf("%w: sender removed by cleansing", email.ErrValidation))
	}

	if p.tracer != nil {
		p.tracer.Parsed(parsed)
	}
	return parsed, nil
}

// Errors returns every recorded diagnostic, oldest first.
func (p *Parser) Errors() []string {
	return p.sink.All()
}

// LastError removes and returns the most recent diagnostic.
func (p *Parser) LastError() (string, bool) {
	return p.sink.Last()
}

// ClearErrors drops all recorded diagnostics.
func (p *Parser) ClearErrors() {
	p.sink.Clear()
}

// LastMessage returns the result of the last successful parse, or nil.
// The message is owned by the caller that received it from Parse.
func (p *Parser) LastMessage() *email.Message {
	return p.last
}

// Registry exposes the provider registry, e.g. to inspect detection.
func (p *Parser) Registry() *provider.Registry {
	return p.registry
}

func (p *Parser) parse(data []byte) (*email.Message, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, p.fail(fmt.Errorf("%w: empty message", email.ErrStructural))
	}

	tree, err := p.adapter.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, p.fail(fmt.Errorf("%w: %w", email.ErrAdapter, err))
	}
	if tree == nil {
		return nil, p.fail(fmt.Errorf("%w: decoder returned no part tree", email.ErrStructural))
	}
	defer func() {
		if err := tree.ReleaseAll(); err != nil {
			p.logger.Warn("failed to release part tree", "error", err)
		}
	}()

	if p.tracer != nil {
		p.tracer.Tree(tree)
	}

	msg, err := reducer.New(p.sink, p.logger).Reduce(tree)
	if err != nil {
		return nil, p.fail(err)
	}

	p.cleanser.Apply(msg)
	if !msg.Valid() {
		msg.Close()
		return nil, p.fail(fmt.Errorf("%w: missing From header", email.ErrValidation))
	}

	if p.tracer != nil {
		p.tracer.Message(msg)
	}
	p.logger.Debug("parsed message",
		"from", msg.From,
		"attachments", len(msg.Attachments),
	)

	p.last = msg
	return msg, nil
}

func (p *Parser) fail(err error) error {
	p.sink.PushErr(err)
	p.logger.Debug("parse failed", "error", err)
	return err
}
