// Package morganstanley normalizes the malformed bounces produced by the
// mail gateways at ms.com and a family of university sites running the same
// software. They return a single text blob with the error listing and the
// quoted original in either order, and list failed recipients by bare
// mailbox name.
package morganstanley

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
	return "morgan-stanley"
}

var (
	reDaemon    = regexp.MustCompile(`(?i)mailer-daemon@(?:ms\.com|emory\.edu|wharton\.upenn\.edu|midway\.uchicago\.edu)`)
	reForClause = regexp.MustCompile(`(?i)\bfor\s+<([^>\s]+@[^>\s]+)>`)
)

// Apply rewrites a matching bounce into the canonical plain-report shape,
// or returns nil when the fingerprint does not match
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	if !reDaemon.MatchString(msg.HeaderGet("from")) {
		return nil
	}
	body := common.PlainText(msg)
	loc := common.ReturnedMessageMarker.FindStringIndex(body)
	if loc == nil {
		return nil
	}
	before, after := body[:loc[0]], body[loc[1]:]

	// The error listing and the quoted original can come in either order;
	// the side carrying a Received header is the original.
	var errText, origText string
	switch {
	case common.ReceivedFromLine.MatchString(after) && common.ErrorListingMarker.MatchString(before):
		errText, origText = before, after
	case common.ReceivedFromLine.MatchString(before) && common.ErrorListingMarker.MatchString(after):
		errText, origText = after, before
	default:
		return nil
	}

	return common.BuildPlainReport(msg, repairBareRecipients(errText, origText), origText)
}

// repairBareRecipients qualifies bare mailbox names in the error listing
// with the full address from the original message's "for <addr>" clause.
// Both the repaired and the literal line are kept so downstream extraction
// sees the qualified address without losing the source text.
func repairBareRecipients(errText, origText string) string {
	match := reForClause.FindStringSubmatch(origText)
	if match == nil {
		return errText
	}
	full := common.CleanupEmail(match[1])
	at := strings.Index(full, "@")
	if at <= 0 {
		return errText
	}
	local := full[:at]

	var out []string
	for _, line := range strings.Split(errText, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && !strings.Contains(fields[0], "@") &&
			strings.EqualFold(strings.Trim(fields[0], ".,:;"), local) {
			out = append(out, strings.Replace(line, fields[0], full, 1))
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
