// Package reports provides the result model for bounce classification
package reports

import (
	"regexp"
	"strings"
)

// Reason is the standardized vocabulary arbitrary diagnostic prose is
// mapped onto
type Reason string

const (
	// UserUnknown means the recipient mailbox does not exist or is disabled
	UserUnknown Reason = "user_unknown"
	// OverQuota means the mailbox or mail system is out of storage
	OverQuota Reason = "over_quota"
	// DomainError means the destination domain or host could not be used
	DomainError Reason = "domain_error"
	// NoProblemo means the diagnostic describes a success, not a failure
	NoProblemo Reason = "no_problemo"
	// Unknown is the fallback when no rule matches
	Unknown Reason = "unknown"
)

// Ordered rules; the first match wins, so a diagnostic mentioning both
// "quota" and "unknown" standardizes to over_quota.
var (
	reHostNotFound = regexp.MustCompile(`(?i)\b(?:domain|host)\b(?:\s+\S+){0,2}\s+(?:not\s+found|unknown|unreachable)`)

	reOverQuota = regexp.MustCompile(`(?i)try\s+again\s+later|mailbox\s+(?:is\s+)?(?:currently\s+)?full|storage|quota`)

	reUserUnknown = regexp.MustCompile(`(?i)` +
		`5\.1\.1` +
		`|\bunknown\b` +
		`|invalid` +
		`|unauthorized` +
		`|unavailable` +
		`|not\s+found` +
		`|no\s+such` +
		`|no\s+mailbox` +
		`|inactive` +
		`|disabled` +
		`|discontinued` +
		`|suspend` +
		`|cancell` +
		`|doesn.?t\s+(?:exist|have)` +
		`|not\s+(?:a\s+)?(?:known|valid|active)`)

	reDomainError = regexp.MustCompile(`(?i)` +
		`domain\s+syntax` +
		`|timed?\s*out` +
		`|no\s+route\s+to\s+host` +
		`|connection\s+(?:refused|reset)` +
		`|couldn.?t\s+find` +
		`|unrout(?:e)?able` +
		`|\brelay` +
		`|no\s+(?:mx|a)\s+record` +
		`|\bdns\b`)
)

// StandardizeReason maps a diagnostic text fragment to a Reason. It is a
// total function: unmatched text yields Unknown.
func StandardizeReason(text string) Reason {
	if reHostNotFound.MatchString(text) {
		return DomainError
	}
	if reOverQuota.MatchString(text) {
		return OverQuota
	}
	if reUserUnknown.MatchString(text) {
		return UserUnknown
	}
	if reDomainError.MatchString(text) {
		return DomainError
	}
	// Hotmail reports "transaction failed" for mail it actually accepted
	lower := strings.ToLower(text)
	if strings.Contains(lower, "hotmail") && strings.Contains(lower, "transaction failed") {
		return NoProblemo
	}
	return Unknown
}
