// Package airmail normalizes AOL AirMail sender-block notices, which list
// the blocked recipients as bare screen names
package airmail

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
	return "aol-airmail"
}

var reBareName = regexp.MustCompile(`^\s{0,4}([A-Za-z0-9._%+-]+)\s*$`)

// Apply qualifies bare recipient names with the sender's domain, rewriting
// the body part in place. Returns nil when the fingerprint does not match.
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	if !strings.Contains(msg.HeaderGet("mailer"), "AirMail") {
		return nil
	}
	part := common.PlainPart(msg)
	if part == nil || !strings.Contains(part.Body, "not accepting mail from") {
		return nil
	}
	domain := common.EmailDomain(common.CleanupEmail(msg.HeaderGet("from")))
	if domain == "" {
		return nil
	}

	lines := strings.Split(part.Body, "\n")
	for i, line := range lines {
		if match := reBareName.FindStringSubmatch(line); match != nil {
			lines[i] = strings.Replace(line, match[1], match[1]+"@"+domain, 1)
		}
	}
	part.Body = strings.Join(lines, "\n")
	return msg
}
