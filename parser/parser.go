// Package parser classifies an inbound message as a bounce or non-bounce and
// extracts one delivery report per failing recipient
package parser

import (
	"io"

	"github.com/abusix/bounce-parser/pkg/email"
	"github.com/abusix/bounce-parser/quirks/airmail"
	"github.com/abusix/bounce-parser/quirks/aolbogus"
	"github.com/abusix/bounce-parser/quirks/compuserve"
	"github.com/abusix/bounce-parser/quirks/groupwise"
	"github.com/abusix/bounce-parser/quirks/ims"
	"github.com/abusix/bounce-parser/quirks/morganstanley"
	"github.com/abusix/bounce-parser/quirks/smtptranscript"
	"github.com/abusix/bounce-parser/quirks/xdeliverystatus"
	"github.com/abusix/bounce-parser/reports"
)

// Preprocessor is one MTA-quirk normalizer. Apply returns the rewritten
// message, or nil when the message does not carry the quirk's fingerprint.
type Preprocessor interface {
	Name() string
	Apply(*email.Entity) *email.Entity
}

// defaultPreprocessors returns the normalizer chain. The order is load
// bearing: every preprocessor runs, each against the previous one's output.
func defaultPreprocessors() []Preprocessor {
	return []Preprocessor{
		morganstanley.New(),
		compuserve.New(),
		ims.New(),
		airmail.New(),
		groupwise.New(),
		aolbogus.New(),
		smtptranscript.New(),
		xdeliverystatus.New(),
	}
}

// Options configures a Parser
type Options struct {
	// ReportNonBounces keeps delivery-status paragraphs whose diagnostic
	// describes a success instead of dropping them
	ReportNonBounces bool
	// Logger receives free-text trace lines at each decision point.
	// Optional.
	Logger func(format string, args ...interface{})
}

// Parser runs the classification pipeline. A Parser is stateless between
// calls and safe for reuse as long as concurrent calls do not share
// entity trees.
type Parser struct {
	opts          Options
	preprocessors []Preprocessor
}

// New creates a Parser with the given options
func New(opts Options) *Parser {
	return &Parser{
		opts:          opts,
		preprocessors: defaultPreprocessors(),
	}
}

func (p *Parser) logf(format string, args ...interface{}) {
	if p.opts.Logger != nil {
		p.opts.Logger(format, args...)
	}
}

// ParseBytes decodes a raw message and classifies it. Undecodable input is
// the only hard failure; everything decodable yields a result.
func (p *Parser) ParseBytes(raw []byte) (*reports.BounceResult, error) {
	msg, err := email.Parse(raw)
	if err != nil {
		return nil, err
	}
	return p.Parse(msg), nil
}

// ParseReader reads a raw message from r and classifies it
func (p *Parser) ParseReader(r io.Reader) (*reports.BounceResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(raw)
}

// Parse classifies an already decoded message. The parser takes ownership
// of the entity tree: preprocessors may rewrite it in place.
func (p *Parser) Parse(msg *email.Entity) *reports.BounceResult {
	for _, pre := range p.preprocessors {
		if rewritten := pre.Apply(msg); rewritten != nil {
			p.logf("preprocessor %s rewrote the message", pre.Name())
			msg = rewritten
		}
	}

	if result := p.classifyNonBounce(msg); result != nil {
		return result
	}

	result := reports.NewBounceResult()
	p.locateOriginal(msg, result)
	if nonBounce := p.extractReports(msg, result); nonBounce != nil {
		return nonBounce
	}
	return result
}
