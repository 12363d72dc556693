// Package ims normalizes bounces from Microsoft Exchange's Internet Mail
// Service, which buries the recipient errors behind a courtesy preamble and,
// in single-part form, runs the error text and the quoted original headers
// together
package ims

import (
	"regexp"
	"strings"

	"github.com/abusix/bounce-parser/pkg/email"
	"github.com/abusix/bounce-parser/quirks/common"
)

type Preprocessor struct{}

func New() *Preprocessor {
	return &Preprocessor{}
}

func (p *Preprocessor) Name() string {
	return "internet-mail-service"
}

var (
	reDidNotReach = regexp.MustCompile(`(?i)did not reach the following recipient`)
	// a blank line followed by an unindented header line marks where the
	// quoted original headers begin
	reHeaderStart = regexp.MustCompile(`\n\r?\n([A-Za-z][A-Za-z0-9-]*:[ \t])`)
)

// Apply rewrites a matching bounce, or returns nil when the fingerprint
// does not match
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	if !strings.Contains(msg.HeaderGet("x-mailer"), "Internet Mail Service") {
		return nil
	}

	if msg.IsMultipart() {
		part := common.PlainPart(msg)
		if part == nil {
			return nil
		}
		loc := reDidNotReach.FindStringIndex(part.Body)
		if loc == nil {
			return nil
		}
		part.Body = part.Body[loc[0]:]
		return msg
	}

	loc := reDidNotReach.FindStringIndex(msg.Body)
	if loc == nil {
		return nil
	}
	tail := msg.Body[loc[0]:]

	errText, origText := tail, ""
	if idx := reHeaderStart.FindStringSubmatchIndex(tail); idx != nil {
		errText, origText = tail[:idx[0]], tail[idx[2]:]
	}
	return common.BuildPlainReport(msg, errText, origText)
}
