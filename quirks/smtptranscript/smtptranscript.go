// Package smtptranscript normalizes sendmail-style plain bounces that quote
// the whole SMTP session ("Transcript of session follows") instead of
// attaching a delivery-status part. The transcript is analyzed and the
// message rebuilt as a canonical multipart/report.
package smtptranscript

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
	return "plain-smtp-transcript"
}

var reMessageFollows = regexp.MustCompile(`(?i)-*\s*(?:the\s+)?message\s+(?:\S+\s+){0,2}follows\s*-*`)

// Apply rebuilds a matching bounce as a synthesized multipart/report, or
// returns nil when the fingerprint does not match
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	body := common.PlainText(msg)
	lower := strings.ToLower(body)
	if !strings.Contains(lower, "permanent fatal errors") ||
		!strings.Contains(lower, "transcript of session follows") {
		return nil
	}
	loc := reMessageFollows.FindStringIndex(body)
	if loc == nil {
		return nil
	}
	transcriptText := body[:loc[0]]
	remainder := strings.TrimSpace(body[loc[1]:])

	transcript := common.AnalyzeTranscript(transcriptText)
	if transcript.Len() == 0 {
		return nil
	}

	reportingMTA := common.EmailDomain(common.CleanupEmail(msg.HeaderGet("from")))
	if reportingMTA == "" {
		reportingMTA = "unknown"
	}
	statusBody := common.BuildDeliveryStatusBody(reportingMTA, msg.HeaderGet("date"), transcript.Entries())

	var origHeaders string
	if remainder != "" {
		origHeaders = remainder + "\n"
	}
	return common.BuildMultipartReport(msg, transcriptText, statusBody, origHeaders)
}
