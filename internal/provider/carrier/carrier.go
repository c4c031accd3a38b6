// Package carrier implements a configurable Provider for MMS gateways that
// are recognised by their sender address and wrap the user's content in
// their own boilerplate.
package carrier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/provider"
	"github.com/shineum/mms-parser/internal/provider/generic"
)

// Config describes one carrier.
type Config struct {
	// Name identifies the provider, e.g. in a configured override.
	Name string `yaml:"name" toml:"name"`
	// Pattern is matched against the bare sender address.
	Pattern string `yaml:"pattern" toml:"pattern"`
	// SubjectFilters are removed from the subject.
	SubjectFilters []string `yaml:"subject_filters" toml:"subject_filters"`
	// BodyFilters are removed from the body text.
	BodyFilters []string `yaml:"body_filters" toml:"body_filters"`
	// DropAttachments drops attachments whose filename matches, such as
	// carrier logos and SMIL layout files.
	DropAttachments []string `yaml:"drop_attachments" toml:"drop_attachments"`
}

// Provider is a carrier strategy built from a Config.
type Provider struct {
	name    string
	match   *regexp.Regexp
	subject []*regexp.Regexp
	body    []*regexp.Regexp
	drop    []*regexp.Regexp
}

// New compiles cfg into a Provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("carrier name is required")
	}
	if cfg.Pattern == "" {
		return nil, fmt.Errorf("carrier %s: pattern is required", cfg.Name)
	}

	match, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("carrier %s: invalid pattern: %w", cfg.Name, err)
	}
	p := &Provider{name: cfg.Name, match: match}

	if p.subject, err = compileAll(cfg.SubjectFilters); err != nil {
		return nil, fmt.Errorf("carrier %s: invalid subject filter: %w", cfg.Name, err)
	}
	if p.body, err = compileAll(cfg.BodyFilters); err != nil {
		return nil, fmt.Errorf("carrier %s: invalid body filter: %w", cfg.Name, err)
	}
	if p.drop, err = compileAll(cfg.DropAttachments); err != nil {
		return nil, fmt.Errorf("carrier %s: invalid attachment filter: %w", cfg.Name, err)
	}
	return p, nil
}

// NewSuffix returns a Provider matching senders in domain or its subdomains.
func NewSuffix(name, domain string) *Provider {
	pattern := `(?i)[@.]` + regexp.QuoteMeta(strings.TrimPrefix(domain, "@")) + `$`
	return &Provider{name: name, match: regexp.MustCompile(pattern)}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Match reports whether the sender address matches the carrier pattern.
func (p *Provider) Match(msg *email.Message) bool {
	return p.match.MatchString(provider.Address(msg.From))
}

// Parse copies msg and strips the carrier's boilerplate.
func (p *Provider) Parse(msg *email.Message) (*email.Parsed, error) {
	parsed, err := generic.Copy(msg, p.name)
	if err != nil {
		return nil, err
	}

	parsed.From = provider.Address(parsed.From)
	parsed.Subject = strings.TrimSpace(removeAll(parsed.Subject, p.subject))
	parsed.BodyText = strings.TrimSpace(removeAll(parsed.BodyText, p.body))

	if len(p.drop) > 0 {
		kept := parsed.Attachments[:0]
		for i := range parsed.Attachments {
			att := parsed.Attachments[i]
			if matchesAny(att.Filename, p.drop) {
				if err := att.Release(); err != nil {
					parsed.Close()
					return nil, fmt.Errorf("failed to drop attachment %q: %w", att.Filename, err)
				}
				continue
			}
			kept = append(kept, att)
		}
		parsed.Attachments = kept
	}
	return parsed, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func removeAll(s string, res []*regexp.Regexp) string {
	for _, re := range res {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

func matchesAny(s string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
