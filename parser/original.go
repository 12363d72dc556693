package parser

import (
	"regexp"

	"github.com/abusix/bounce-parser/pkg/email"
	"github.com/abusix/bounce-parser/reports"
)

var reMessageIDLine = regexp.MustCompile(`(?i)message-id:\s*(\S+)`)

// locateOriginal recovers a pointer to the bounced original message, trying
// the structured strategies first. Finding nothing is not an error.
func (p *Parser) locateOriginal(msg *email.Entity, result *reports.BounceResult) {
	if msg.IsMultipart() {
		if part := msg.FindPart("message/rfc822"); part != nil && len(part.Parts) > 0 {
			orig := part.Parts[0]
			result.OrigMessage = orig
			result.OrigMessageID = orig.HeaderGet("message-id")
			p.logf("original message recovered from message/rfc822 part")
			return
		}
		if part := msg.FindPart("text/rfc822-headers"); part != nil {
			headers := email.ParseHeaderBlock(part.Body)
			result.OrigHeader = headers
			if values := headers["message-id"]; len(values) > 0 {
				result.OrigMessageID = values[0]
			}
			p.logf("original headers recovered from text/rfc822-headers part")
			return
		}
	}

	if msg.Body != "" {
		if match := reMessageIDLine.FindStringSubmatch(msg.Body); match != nil {
			result.OrigMessageID = match[1]
			p.logf("original message-id found in body text")
			return
		}
	}

	p.logf("no original message found")
}
