package common

import (
	"fmt"
	"strings"

	"github.com/abusix/bounce-parser/pkg/email"
)

// copyMessageHeaders duplicates a message's headers minus the MIME structure
// headers, so the copy can carry a different shape
func copyMessageHeaders(base *email.Entity) map[string][]string {
	headers := make(map[string][]string)
	if base != nil {
		for key, values := range base.Headers {
			if key == "content-type" || key == "content-transfer-encoding" || key == "mime-version" {
				continue
			}
			headers[key] = append([]string(nil), values...)
		}
	}
	return headers
}

// BuildPlainReport rebuilds a malformed bounce as the canonical single-part
// plain report: error text first, then the original message behind a marker
// the extractor recognizes.
func BuildPlainReport(base *email.Entity, errorText, origText string) *email.Entity {
	headers := copyMessageHeaders(base)
	headers["content-type"] = []string{"text/plain"}

	body := strings.TrimRight(errorText, "\n") + "\n\n   ----- Original message follows -----\n\n"
	body += strings.TrimLeft(origText, "\n")

	return &email.Entity{
		Headers:     headers,
		ContentType: "text/plain",
		Body:        body,
	}
}

// BuildMultipartReport rebuilds a malformed bounce as a canonical RFC 1892
// multipart/report: a human-readable part, a delivery-status part and,
// when available, the original message headers.
func BuildMultipartReport(base *email.Entity, humanText, deliveryStatusBody, origHeaderText string) *email.Entity {
	headers := copyMessageHeaders(base)
	headers["content-type"] = []string{`multipart/report; report-type=delivery-status`}

	parts := []*email.Entity{
		email.NewPart("text/plain", humanText),
		email.NewPart("message/delivery-status", deliveryStatusBody),
	}
	if origHeaderText != "" {
		parts = append(parts, email.NewPart("text/rfc822-headers", origHeaderText))
	}

	return &email.Entity{
		Headers:     headers,
		ContentType: "multipart/report",
		Params:      map[string]string{"report-type": "delivery-status"},
		Parts:       parts,
	}
}

// BuildDeliveryStatusBody renders transcript results as a delivery-status
// body: a Reporting-MTA block followed by one failed paragraph per recipient
func BuildDeliveryStatusBody(reportingMTA, arrivalDate string, entries []*TranscriptEntry) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Reporting-MTA: dns; %s\n", reportingMTA)
	if arrivalDate != "" {
		fmt.Fprintf(&builder, "Arrival-Date: %s\n", arrivalDate)
	}
	builder.WriteString("\n")

	for _, entry := range entries {
		fmt.Fprintf(&builder, "Final-Recipient: rfc822; %s\n", entry.Email)
		builder.WriteString("Action: failed\n")
		fmt.Fprintf(&builder, "Status: %s\n", statusForCode(entry.SMTPCode))
		fmt.Fprintf(&builder, "Diagnostic-Code: %s\n", FormatDiagnosticCode(entry))
		builder.WriteString("\n")
	}

	return builder.String()
}

// FormatDiagnosticCode renders a transcript entry as an smtp
// Diagnostic-Code value carrying the host and reply code where the
// extractor's patterns will find them
func FormatDiagnosticCode(entry *TranscriptEntry) string {
	var parts []string
	if entry.Host != "" {
		parts = append(parts, "host "+entry.Host+" said:")
	}
	if entry.SMTPCode != "" {
		parts = append(parts, entry.SMTPCode)
	}
	if len(entry.Errors) > 0 {
		parts = append(parts, strings.Join(entry.Errors, "; "))
	}
	if len(parts) == 0 {
		parts = append(parts, "delivery failed")
	}
	return "smtp; " + strings.Join(parts, " ")
}

func statusForCode(code string) string {
	if strings.HasPrefix(code, "4") {
		return "4.0.0"
	}
	return "5.0.0"
}
