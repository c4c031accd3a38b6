// Package mmsparser reduces MMS notification mail to a canonical message and
// hands it to a carrier provider for carrier-specific extraction.
//
//	p := mmsparser.New(mmsparser.WithProviders(
//		mmsparser.NewSuffixCarrier("example", "mms.example.net"),
//	))
//	msg, err := p.ParseFile("notification.eml")
//	if err != nil {
//		return fmt.Errorf("%w (%v)", err, p.Errors())
//	}
//	defer msg.Close()
//	rec, err := p.ProviderParse(nil)
package mmsparser

import (
	"github.com/shineum/mms-parser/internal/cleanse"
	"github.com/shineum/mms-parser/internal/config"
	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/mimetree"
	"github.com/shineum/mms-parser/internal/parser"
	"github.com/shineum/mms-parser/internal/provider"
	"github.com/shineum/mms-parser/internal/provider/carrier"
	"github.com/shineum/mms-parser/internal/provider/generic"
)

type (
	Parser        = parser.Parser
	Option        = parser.Option
	Message       = email.Message
	Parsed        = email.Parsed
	Header        = email.Header
	Attachment    = email.Attachment
	Field         = email.Field
	Provider      = provider.Provider
	Transform     = cleanse.Transform
	CarrierConfig = carrier.Config
	Config        = config.Config
	MIMEAdapter   = mimetree.Adapter
	Part          = mimetree.Part
)

const (
	FieldFrom     = email.FieldFrom
	FieldTo       = email.FieldTo
	FieldSubject  = email.FieldSubject
	FieldDatetime = email.FieldDatetime
	FieldBodyText = email.FieldBodyText
)

var (
	ErrAdapter          = email.ErrAdapter
	ErrStructural       = email.ErrStructural
	ErrValidation       = email.ErrValidation
	ErrProviderNotFound = email.ErrProviderNotFound
	ErrProviderFailure  = email.ErrProviderFailure
)

var (
	New                 = parser.New
	NewFromConfig       = parser.NewFromConfig
	WithMIMEParser      = parser.WithMIMEParser
	WithDebug           = parser.WithDebug
	WithDebugWriter     = parser.WithDebugWriter
	WithOutputDir       = parser.WithOutputDir
	WithProvider        = parser.WithProvider
	WithProviders       = parser.WithProviders
	WithFallback        = parser.WithFallback
	WithStripCharacters = parser.WithStripCharacters
	WithCleanseMap      = parser.WithCleanseMap
	WithLogLevel        = parser.WithLogLevel
	WithLogger          = parser.WithLogger

	LoadConfig         = config.Load
	LoadConfigFromFile = config.LoadFromFile

	NewCarrier       = carrier.New
	NewSuffixCarrier = carrier.NewSuffix
	NewGeneric       = generic.New

	Substitute          = cleanse.Substitute
	TrimTrailingNewline = cleanse.TrimTrailingNewline
	TrimSpace           = cleanse.TrimSpace
	Chain               = cleanse.Chain
)
