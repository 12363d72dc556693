package parser

import (
	"regexp"

	"github.com/abusix/bounce-parser/pkg/email"
	"github.com/abusix/bounce-parser/quirks/common"
	"github.com/abusix/bounce-parser/reports"
)

// autoreplySizeLimit bounds the bodies the autoreply checks look at; real
// bounces quote the whole original and blow well past it
const autoreplySizeLimit = 3000

var (
	reAutoReply = regexp.MustCompile(`(?is)auto.{0,20}?reply|\bvacation\b|out\s+of\s+(?:the\s+)?office|(?:away|on\s+holiday).{0,40}?office`)

	reAddressChange = regexp.MustCompile(`(?is)(?:address\b.{0,60}?\bchanged|domain\b.{0,40}?\bretired).{0,200}?(?:forwarded|delivered)`)

	reContentFilter = regexp.MustCompile(`(?i)mailscanner|spamassassin|norton\s+antivirus|symantec|interscan|mimedefang|amavis|panda\s+antivirus|content\s+filter`)

	reTransientError = regexp.MustCompile(`(?is)transient.{0,20}?error`)

	reAutoForward = regexp.MustCompile(`(?i)automatically\s+forwarded`)

	reSoftSignal = regexp.MustCompile(`(?i)\bdelayed\b|\bwarning\b|transient\s+error|delivered\s+to\s+the\s+following\s+recipient`)

	rePermanentError = regexp.MustCompile(`(?i)permanent(?:ly)?|fatal\s+error|could\s+not\s+be\s+delivered|unable\s+to\s+deliver|delivery\s+(?:has\s+)?failed`)
)

// classifyNonBounce runs the ordered pre-extraction checks and returns a
// non-bounce result for the first one that matches, or nil. Action-based
// checks on delivery-status paragraphs live in the extractor.
func (p *Parser) classifyNonBounce(msg *email.Entity) *reports.BounceResult {
	first := msg.FirstNonMultipart()

	// autoreply shapes: small plain first part, not a structured report
	if first != nil && first.EffectiveType() == "text/plain" &&
		len(first.Body) <= autoreplySizeLimit &&
		msg.EffectiveType() != "multipart/report" {
		if reAutoReply.MatchString(first.Body) {
			p.logf("autoreply pattern matched, not a bounce")
			return reports.NonBounce("vacation autoreply")
		}
		if reAddressChange.MatchString(first.Body) {
			p.logf("address-change autoreply matched, not a bounce")
			return reports.NonBounce("informational address-change autoreply")
		}
	}

	if msg.EffectiveType() == "text/plain" {
		if len(msg.Body) <= autoreplySizeLimit && reContentFilter.MatchString(msg.Body) {
			p.logf("content filter notice matched, not a bounce")
			return reports.NonBounce("virus scanner false positive")
		}
		if reTransientError.MatchString(msg.Body) {
			p.logf("transient error notice matched, not a bounce")
			return reports.NonBounce("")
		}
		forward := common.MatchPosition(msg.Body, reAutoForward)
		boundary := common.MatchPosition(msg.Body, common.ReturnedMessageMarker)
		if common.PositionBefore(forward, boundary) {
			p.logf("forwarding notification matched, not a bounce")
			return reports.NonBounce("automatic forward")
		}
	}

	// soft signals (delayed, warning) count only when they show up before
	// the quoted original, and a permanent-error phrase in the same window
	// always wins
	for _, text := range p.softSignalScopes(msg) {
		soft := common.MatchPosition(text, reSoftSignal)
		boundary := common.MatchPosition(text, common.ReturnedMessageMarker)
		if !common.PositionBefore(soft, boundary) {
			continue
		}
		permanent := common.MatchPosition(text, rePermanentError)
		if common.PositionBefore(permanent, boundary) {
			p.logf("permanent error signal overrides soft signal")
			continue
		}
		p.logf("soft non-bounce signal matched before original message")
		return reports.NonBounce("transient warning")
	}

	return nil
}

// softSignalScopes returns the texts the soft-signal check inspects: the
// whole body for a plain message, every plain sub-part for a multipart that
// is not a structured report
func (p *Parser) softSignalScopes(msg *email.Entity) []string {
	if msg.EffectiveType() == "text/plain" {
		return []string{msg.Body}
	}
	if !msg.IsMultipart() || msg.EffectiveType() == "multipart/report" {
		return nil
	}
	var scopes []string
	for _, leaf := range msg.Leaves() {
		if leaf.EffectiveType() == "text/plain" {
			scopes = append(scopes, leaf.Body)
		}
	}
	return scopes
}
