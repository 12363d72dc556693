// Package groupwise normalizes Novell GroupWise 5.2 bounces, which list
// failed recipients as bare names followed by a parenthetical remark
package groupwise

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
	return "novell-groupwise"
}

var reBareRecipient = regexp.MustCompile(`^(\s+)(\S+)(\s+\(.*\).*)$`)

// Apply qualifies bare recipient names with the sender's domain, rewriting
// the plain-text part in place. Returns nil when the fingerprint does not
// match.
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	if !strings.Contains(strings.ToLower(msg.HeaderGet("x-mailer")), "novell groupwise") {
		return nil
	}
	if msg.EffectiveType() != "multipart/mixed" {
		return nil
	}
	part := common.PlainPart(msg)
	if part == nil {
		return nil
	}
	domain := common.EmailDomain(common.CleanupEmail(msg.HeaderGet("from")))
	if domain == "" {
		return nil
	}

	lines := strings.Split(part.Body, "\n")
	for i, line := range lines {
		match := reBareRecipient.FindStringSubmatch(line)
		if match != nil && !strings.Contains(match[2], "@") {
			lines[i] = match[1] + match[2] + "@" + domain + match[3]
		}
	}
	part.Body = strings.Join(lines, "\n")
	return msg
}
