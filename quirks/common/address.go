// Package common provides the text heuristics shared by the quirk
// preprocessors and the extraction engine
package common

import (
	"regexp"
	"strings"
)

var (
	reRemark        = regexp.MustCompile(`\([^)]*\)`)
	reToLabel       = regexp.MustCompile(`(?i)^to:\s*`)
	reTrailingPunct = regexp.MustCompile(`[.,:;]+$`)
	reAngleAddr     = regexp.MustCompile(`<(.+)>`)
	reSMTPPrefix    = regexp.MustCompile(`(?i)^.*:smtp=`)
)

// CleanupEmail strips remark text, labels, punctuation and brackets from an
// address token. It is idempotent: CleanupEmail(CleanupEmail(x)) ==
// CleanupEmail(x).
func CleanupEmail(addr string) string {
	addr = reRemark.ReplaceAllString(addr, "")
	addr = reToLabel.ReplaceAllString(addr, "")
	addr = strings.TrimSpace(addr)
	addr = reTrailingPunct.ReplaceAllString(addr, "")
	if match := reAngleAddr.FindStringSubmatch(addr); match != nil {
		addr = match[1]
	}
	addr = reSMTPPrefix.ReplaceAllString(addr, "")
	addr = strings.TrimSpace(addr)
	addr = reTrailingPunct.ReplaceAllString(addr, "")
	return addr
}

// EmailDomain returns the domain part of an address, or ""
func EmailDomain(addr string) string {
	if idx := strings.LastIndex(addr, "@"); idx != -1 && idx < len(addr)-1 {
		return addr[idx+1:]
	}
	return ""
}

// MatchPosition returns the byte offset of the first match of pattern in
// text, or -1 when there is no match
func MatchPosition(text string, pattern *regexp.Regexp) int {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// PositionBefore reports whether position a exists and precedes position b.
// An absent b (-1) counts as "after everything", so any present a wins.
func PositionBefore(a, b int) bool {
	if a < 0 {
		return false
	}
	return b < 0 || a < b
}
