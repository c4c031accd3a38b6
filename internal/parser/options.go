package parser

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/shineum/mms-parser/internal/cleanse"
	"github.com/shineum/mms-parser/internal/config"
	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/mimetree"
	"github.com/shineum/mms-parser/internal/provider"
	"github.com/shineum/mms-parser/internal/provider/carrier"
)

// Option configures a Parser.
type Option func(*Parser)

// WithMIMEParser replaces the default go-message decoder.
func WithMIMEParser(a mimetree.Adapter) Option {
	return func(p *Parser) { p.adapter = a }
}

// WithDebug enables debug logging and trace dumps on the debug writer.
func WithDebug(debug bool) Option {
	return func(p *Parser) { p.debug = debug }
}

// WithDebugWriter sets where debug output goes. Defaults to os.Stderr.
func WithDebugWriter(w io.Writer) Option {
	return func(p *Parser) { p.debugWriter = w }
}

// WithOutputDir makes the decoder store part bodies as files under dir.
func WithOutputDir(dir string) Option {
	return func(p *Parser) { p.outputDir = dir }
}

// WithProvider forces every ProviderParse call to use prov, bypassing detection.
func WithProvider(prov provider.Provider) Option {
	return func(p *Parser) { p.override = prov }
}

// WithProviders registers carrier providers, consulted in the given order.
func WithProviders(provs ...provider.Provider) Option {
	return func(p *Parser) { p.providers = append(p.providers, provs...) }
}

// WithFallback replaces the generic fallback provider.
func WithFallback(prov provider.Provider) Option {
	return func(p *Parser) { p.fallback = prov }
}

// WithStripCharacters removes every character of chars from the message fields.
func WithStripCharacters(chars string) Option {
	return func(p *Parser) { p.cleanser.StripCharacters = chars }
}

// WithCleanseMap sets per-field transforms, applied after stripping.
func WithCleanseMap(m map[email.Field]cleanse.Transform) Option {
	return func(p *Parser) { p.cleanser.Map = m }
}

// WithLogLevel logs warnings and above (or the given level) to the debug
// writer even when debug mode is off.
func WithLogLevel(level slog.Level) Option {
	return func(p *Parser) { p.logLevel = &level }
}

// WithLogger sets the logger. It takes precedence over the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// NewFromConfig creates a Parser from loaded configuration. Options in opts
// are applied after the configured ones and win over them; a WithProvider in
// opts replaces the provider named in cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Parser, error) {
	carriers := make([]provider.Provider, 0, len(cfg.Carriers))
	for _, cc := range cfg.Carriers {
		c, err := carrier.New(cc)
		if err != nil {
			return nil, fmt.Errorf("failed to configure carriers: %w", err)
		}
		carriers = append(carriers, c)
	}

	transforms, err := cleanse.Compile(cfg.Cleanse)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cleanse map: %w", err)
	}

	base := []Option{
		WithDebug(cfg.Debug),
		WithOutputDir(cfg.OutputDir),
		WithStripCharacters(cfg.StripCharacters),
		WithProviders(carriers...),
		WithLogLevel(cfg.LogLevel()),
	}
	if transforms != nil {
		base = append(base, WithCleanseMap(transforms))
	}

	p := New(append(base, opts...)...)
	if cfg.Provider != "" && p.override == nil {
		override, ok := p.registry.Lookup(cfg.Provider)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
		}
		p.override = override
	}
	return p, nil
}
