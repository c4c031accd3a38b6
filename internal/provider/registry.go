package provider

import (
	"fmt"
	"log/slog"

	"github.com/shineum/mms-parser/internal/email"
)

// Registry holds carrier providers in registration order plus one fallback
// that is used when none of them match.
type Registry struct {
	providers []Provider
	fallback  Provider
	logger    *slog.Logger
}

// NewRegistry creates a Registry. A nil fallback is allowed but makes
// Detect fail with email.ErrProviderNotFound when nothing matches.
func NewRegistry(fallback Provider, providers ...Provider) *Registry {
	r := &Registry{fallback: fallback, logger: slog.Default()}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// SetLogger sets the logger used for selection traces.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Register appends p after the providers already registered.
func (r *Registry) Register(p Provider) {
	if p != nil {
		r.providers = append(r.providers, p)
	}
}

// Providers returns the registered providers, without the fallback.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Lookup returns the provider with the given name, including the fallback.
func (r *Registry) Lookup(name string) (Provider, bool) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, true
		}
	}
	if r.fallback != nil && r.fallback.Name() == name {
		return r.fallback, true
	}
	return nil, false
}

// Detect selects the first registered provider whose Match accepts msg,
// or the fallback.
func (r *Registry) Detect(msg *email.Message) (Provider, error) {
	for _, p := range r.providers {
		if p.Match(msg) {
			return p, nil
		}
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("%w for sender %q", email.ErrProviderNotFound, msg.From)
	}
	return r.fallback, nil
}

// Dispatch runs a provider over msg. A non-nil override is used without
// detection. Provider errors are returned wrapped in email.ErrProviderFailure.
func (r *Registry) Dispatch(msg *email.Message, override Provider) (*email.Parsed, error) {
	p := override
	if p == nil {
		var err error
		if p, err = r.Detect(msg); err != nil {
			return nil, err
		}
		r.logger.Debug("detected provider", "provider", p.Name(), "from", msg.From)
	} else {
		r.logger.Debug("using configured provider", "provider", p.Name())
	}

	parsed, err := p.Parse(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", email.ErrProviderFailure, p.Name(), err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("%w: %s returned no record", email.ErrProviderFailure, p.Name())
	}
	if !parsed.Valid() {
		parsed.Close()
		return nil, fmt.Errorf("%w: %s produced a record without sender", email.ErrValidation, p.Name())
	}
	if parsed.Provider == "" {
		parsed.Provider = p.Name()
	}
	return parsed, nil
}
