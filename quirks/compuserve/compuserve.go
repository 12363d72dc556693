// Package compuserve normalizes CompuServe bounces, which report failed
// recipients as bare screen names behind a "Receiver not found:" label
package compuserve

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
	return "compuserve"
}

var (
	reReturnedMessage = regexp.MustCompile(`(?i)-*\s*Returned Message\s*-*`)
	reReceiverLine    = regexp.MustCompile(`(?i)^(\s*Receiver not found:\s*)(\S+)\s*$`)
)

// Apply rewrites a matching bounce into the canonical plain-report shape,
// or returns nil when the fingerprint does not match
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	from := strings.ToLower(msg.HeaderGet("from"))
	if !strings.Contains(from, "@compuserve.com") {
		return nil
	}
	body := common.PlainText(msg)
	if !strings.Contains(body, "Receiver not found:") {
		return nil
	}

	errText, origText := body, ""
	if loc := reReturnedMessage.FindStringIndex(body); loc != nil {
		errText, origText = body[:loc[0]], body[loc[1]:]
	}

	var out []string
	for _, line := range strings.Split(errText, "\n") {
		if match := reReceiverLine.FindStringSubmatch(line); match != nil && !strings.Contains(match[2], "@") {
			line = match[1] + match[2] + "@compuserve.com"
		}
		out = append(out, line)
	}

	return common.BuildPlainReport(msg, strings.Join(out, "\n"), origText)
}
