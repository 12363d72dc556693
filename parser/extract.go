package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/abusix/bounce-parser/pkg/email"
	"github.com/abusix/bounce-parser/quirks/common"
	"github.com/abusix/bounce-parser/reports"
)

var (
	reParagraphGap  = regexp.MustCompile(`\n[ \t]*\n`)
	reSchemePrefix  = regexp.MustCompile(`^[A-Za-z0-9-]+;\s*`)
	reHostToken     = regexp.MustCompile(`(?i)\bhost\s+(\S+)`)
	reSMTPCode      = regexp.MustCompile(`\b([245]\d\d)\b`)
	reAddressToken  = regexp.MustCompile(`\S+@\S+`)
	rePrefixThenMsg = regexp.MustCompile(`(?is)^(.+?)\n[ \t]*\n(.*message-id:.+)$`)
)

// senderBlockPhrase marks AOL sender-block text where the adjacent address
// is the blocked sender, not a failing recipient
const senderBlockPhrase = "they are not accepting mail from"

// extractReports fills result.Reports from the preprocessed message. A
// non-nil return is a mid-extraction non-bounce classification (delivery
// status actions like "relayed") that replaces the whole result.
func (p *Parser) extractReports(msg *email.Entity, result *reports.BounceResult) *reports.BounceResult {
	switch {
	case msg.EffectiveType() == "multipart/report":
		return p.extractDeliveryStatus(msg, result)
	case msg.IsMultipart():
		p.extractFromParts(msg, result)
		return nil
	default:
		p.extractFromPlainBody(msg, result)
		return nil
	}
}

// extractDeliveryStatus parses the message/delivery-status part of an
// RFC 1892 report paragraph by paragraph
func (p *Parser) extractDeliveryStatus(msg *email.Entity, result *reports.BounceResult) *reports.BounceResult {
	var body string
	if status := msg.FindPart("message/delivery-status"); status != nil {
		body = status.Body
	} else {
		p.logf("multipart/report without a delivery-status part, no reports")
	}

	// first Reporting-MTA / Arrival-Date seen carry forward into later
	// paragraphs that lack them
	var reportingMTA, arrivalDate string
	sawFailed, sawExpanded := false, false

	for _, paragraph := range reParagraphGap.Split(strings.ReplaceAll(body, "\r\n", "\n"), -1) {
		fields := email.ParseHeaderFields(paragraph)
		if len(fields) == 0 {
			continue
		}
		get := func(name string) string {
			for _, field := range fields {
				if strings.EqualFold(field.Key, name) {
					return field.Value
				}
			}
			return ""
		}
		if value := get("reporting-mta"); value != "" && reportingMTA == "" {
			reportingMTA = value
		}
		if value := get("arrival-date"); value != "" && arrivalDate == "" {
			arrivalDate = value
		}

		recipient := get("original-recipient")
		if recipient == "" {
			recipient = get("final-recipient")
		}
		if recipient == "" {
			continue
		}

		action := get("action")
		switch strings.ToLower(strings.TrimSpace(action)) {
		case "failed":
			sawFailed = true
		case "expanded":
			sawExpanded = true
			continue
		case "":
			// tolerated; treat the paragraph as a failure report
		default:
			if !sawFailed {
				p.logf("delivery-status action %q, not a bounce", action)
				return reports.NonBounce("delivery-status " + strings.TrimSpace(action))
			}
			continue
		}

		report := reports.NewReport()
		for _, field := range fields {
			report.Set(field.Key, field.Value)
		}
		if reportingMTA != "" && report.Get("reporting-mta") == "" {
			report.Set("reporting-mta", reportingMTA)
		}
		if arrivalDate != "" && report.Get("arrival-date") == "" {
			report.Set("arrival-date", arrivalDate)
		}

		addr := common.CleanupEmail(reSchemePrefix.ReplaceAllString(recipient, ""))
		if addr == "" {
			continue
		}
		report.Email = addr

		diagnostic := reSchemePrefix.ReplaceAllString(get("diagnostic-code"), "")
		report.Reason = diagnostic
		report.StdReason = reports.StandardizeReason(diagnostic)
		report.Host = hostFromText(diagnostic)
		if report.Host == "" {
			report.Host = common.EmailDomain(addr)
		}
		if match := reSMTPCode.FindStringSubmatch(diagnostic); match != nil {
			report.SMTPCode = match[1]
		}
		// a 2xx reply is a success, not a failure; AOL success codes lie
		if strings.HasPrefix(report.SMTPCode, "2") && !strings.HasSuffix(report.Host, "aol.com") {
			report.StdReason = reports.NoProblemo
		}
		if report.StdReason == reports.NoProblemo && !p.opts.ReportNonBounces {
			p.logf("dropping no_problemo paragraph for %s", addr)
			continue
		}

		result.Reports = append(result.Reports, report)
	}

	if sawExpanded && !sawFailed {
		p.logf("delivery-status expanded only, not a bounce")
		return reports.NonBounce("delivery-status expanded")
	}
	return nil
}

// extractFromParts runs heuristic extraction over each textual sub-part of
// a multipart that is not a structured report. Deduplication state is shared
// across the parts; each report's raw window stays within its own part.
func (p *Parser) extractFromParts(msg *email.Entity, result *reports.BounceResult) {
	seen := make(map[string]*reports.Report)
	for _, leaf := range msg.Leaves() {
		mediaType := leaf.EffectiveType()
		if strings.Contains(mediaType, "rfc822") || strings.HasSuffix(mediaType, "/html") {
			continue
		}
		p.extractFromText(leaf.Body, result, seen)
	}

	// some MTAs bounce with an HTML body and nothing else
	if len(result.Reports) == 0 {
		p.extractFromHTML(msg, result)
	}
}

// extractFromHTML strips the tags from HTML sub-parts and retries heuristic
// extraction over the remaining text
func (p *Parser) extractFromHTML(msg *email.Entity, result *reports.BounceResult) {
	var texts []string
	for _, leaf := range msg.Leaves() {
		if !strings.HasSuffix(leaf.EffectiveType(), "/html") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(leaf.Body))
		if err != nil {
			continue
		}
		texts = append(texts, doc.Text())
	}
	if len(texts) == 0 {
		return
	}
	p.logf("retrying extraction over %d html part(s)", len(texts))
	seen := make(map[string]*reports.Report)
	for _, text := range texts {
		p.extractFromText(text, result, seen)
	}
}

// extractFromPlainBody handles a single-part message: error text before the
// quoted original, with progressively weaker splits
func (p *Parser) extractFromPlainBody(msg *email.Entity, result *reports.BounceResult) {
	body := msg.Body

	if loc := common.ReturnedMessageMarker.FindStringIndex(body); loc != nil {
		p.logf("splitting plain body on original-message marker")
		p.extractFromText(body[:loc[0]], result, make(map[string]*reports.Report))
		result.OrigText = body[loc[0]:]
		return
	}

	if match := rePrefixThenMsg.FindStringSubmatch(body); match != nil {
		p.logf("splitting plain body before embedded message-id block")
		p.extractFromText(match[1], result, make(map[string]*reports.Report))
		result.OrigText = match[2]
		return
	}

	p.extractFromText(body, result, make(map[string]*reports.Report))
	result.OrigText = body
}

// extractFromText is the heuristic extractor: the text is split on
// address-looking tokens and each address is judged by its neighbouring
// segments. seen holds the deduplication state, which callers share across
// related texts.
func (p *Parser) extractFromText(text string, result *reports.BounceResult, seen map[string]*reports.Report) {
	locs := reAddressToken.FindAllStringIndex(text, -1)

	for i, loc := range locs {
		token := text[loc[0]:loc[1]]

		start := 0
		if i > 0 {
			start = locs[i-1][1]
		}
		preceding := text[start:loc[0]]

		end := len(text)
		if i < len(locs)-1 {
			end = locs[i+1][0]
		}
		following := text[loc[1]:end]

		addr := common.CleanupEmail(token)
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		if containsSenderBlock(preceding) || containsSenderBlock(following) {
			p.logf("skipping %s: sender-block artifact", addr)
			continue
		}

		reason := strings.TrimSpace(following)
		std := reports.StandardizeReason(following)
		if std == reports.Unknown {
			if fromPreceding := reports.StandardizeReason(preceding); fromPreceding != reports.Unknown {
				std = fromPreceding
				reason = strings.TrimSpace(preceding)
			}
		}
		raw := preceding + token + following

		if existing, ok := seen[addr]; ok {
			// first good reason wins; first occurrence wins on ties
			if existing.StdReason == reports.Unknown && std != reports.Unknown {
				existing.StdReason = std
				existing.Reason = reason
				existing.Raw = raw
			}
			continue
		}

		report := reports.NewReport()
		report.Email = addr
		report.StdReason = std
		report.Reason = reason
		report.Raw = raw
		report.Host = hostFromText(raw)
		if report.Host == "" {
			report.Host = common.EmailDomain(addr)
		}
		if match := reSMTPCode.FindStringSubmatch(raw); match != nil {
			report.SMTPCode = match[1]
		}

		seen[addr] = report
		result.Reports = append(result.Reports, report)
	}
}

func containsSenderBlock(segment string) bool {
	return strings.Contains(strings.ToLower(segment), senderBlockPhrase)
}

func hostFromText(text string) string {
	if match := reHostToken.FindStringSubmatch(text); match != nil {
		return strings.TrimRight(match[1], ".,:;")
	}
	return ""
}
