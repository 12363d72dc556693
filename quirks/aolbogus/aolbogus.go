// Package aolbogus corrects AOL delivery-status reports that carry a
// "250 OK" diagnostic code on a failed delivery. The true outcome is
// recovered from the SMTP transcript in the human-readable part.
package aolbogus

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
	return "aol-bogus-250"
}

var (
	reBogus250   = regexp.MustCompile(`(?im)^diagnostic-code:[^\n]*\b2\d\d\b`)
	reRecipient  = regexp.MustCompile(`(?i)^(?:original|final)-recipient:\s*(?:[^;]+;)?\s*(.+)$`)
	reDiagnostic = regexp.MustCompile(`(?i)^diagnostic-code:[^\n]*\b2\d\d\b`)
)

// Apply substitutes corrected Diagnostic-Code lines derived from the
// transcript, rewriting the delivery-status part in place. Returns nil when
// the fingerprint does not match.
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	from := strings.ToLower(msg.HeaderGet("from"))
	if !strings.Contains(from, "mailer-daemon@aol.com") {
		return nil
	}
	if msg.EffectiveType() != "multipart/report" {
		return nil
	}
	status := msg.FindPart("message/delivery-status")
	if status == nil || !reBogus250.MatchString(status.Body) {
		return nil
	}
	part := common.PlainPart(msg)
	if part == nil {
		return nil
	}
	transcript := common.AnalyzeTranscript(part.Body)
	if transcript.Len() == 0 {
		return nil
	}

	// walk the status paragraphs, keyed by the cleaned recipient of the
	// current paragraph; a blank line starts the next paragraph
	var recipient string
	lines := strings.Split(status.Body, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			recipient = ""
			continue
		}
		if match := reRecipient.FindStringSubmatch(line); match != nil {
			recipient = common.CleanupEmail(match[1])
			continue
		}
		if recipient == "" || !reDiagnostic.MatchString(line) {
			continue
		}
		if entry := transcript.Entry(recipient); entry != nil {
			lines[i] = "Diagnostic-Code: " + common.FormatDiagnosticCode(entry)
		}
	}
	status.Body = strings.Join(lines, "\n")
	return msg
}
