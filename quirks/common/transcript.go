package common

import (
	"regexp"
	"strings"
)

// TranscriptEntry is one recipient's outcome recovered from an SMTP session
// transcript
type TranscriptEntry struct {
	Email    string
	Host     string
	SMTPCode string
	Errors   []string
}

// Transcript holds per-recipient transcript results in the order the
// recipients first appeared
type Transcript struct {
	order   []string
	byEmail map[string]*TranscriptEntry
}

// Entries returns the transcript entries in first-appearance order
func (t *Transcript) Entries() []*TranscriptEntry {
	entries := make([]*TranscriptEntry, 0, len(t.order))
	for _, addr := range t.order {
		entries = append(entries, t.byEmail[addr])
	}
	return entries
}

// Entry returns the entry for a cleaned address, or nil
func (t *Transcript) Entry(addr string) *TranscriptEntry {
	return t.byEmail[addr]
}

// Len returns the number of recipients found in the transcript
func (t *Transcript) Len() int {
	return len(t.order)
}

var (
	reTalkingTo = regexp.MustCompile(`(?i)while talking to (\S+)`)
	reRcptTo    = regexp.MustCompile(`(?i)RCPT TO:\s*<?([^>\s]+)>?`)
	reResponse  = regexp.MustCompile(`<<< (\d{3})\s?(.*)`)
	reSummary   = regexp.MustCompile(`^(\d{3}) (<?\S+?>?)\.\.\.\s?(.*)`)
	hostTrimSet = ".:;,"
)

// AnalyzeTranscript recovers per-recipient host, SMTP code and error lines
// from an SMTP session transcript, scanned line by line. Host and recipient
// state carries forward until superseded, so every response and summary line
// lands on the right entry even when several recipients share one block.
func AnalyzeTranscript(text string) *Transcript {
	transcript := &Transcript{byEmail: make(map[string]*TranscriptEntry)}
	entry := func(addr string) *TranscriptEntry {
		existing, ok := transcript.byEmail[addr]
		if !ok {
			existing = &TranscriptEntry{Email: addr}
			transcript.byEmail[addr] = existing
			transcript.order = append(transcript.order, addr)
		}
		return existing
	}

	var curEmail, curHost string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if match := reTalkingTo.FindStringSubmatch(line); match != nil {
			curHost = strings.TrimRight(match[1], hostTrimSet)
		}
		if match := reRcptTo.FindStringSubmatch(line); match != nil {
			curEmail = CleanupEmail(match[1])
			entry(curEmail).Host = curHost
		}
		if match := reResponse.FindStringSubmatch(line); match != nil {
			rcpt := entry(curEmail)
			rcpt.SMTPCode = match[1]
			rcpt.Errors = append(rcpt.Errors, strings.TrimSpace(match[2]))
		}
		if match := reSummary.FindStringSubmatch(line); match != nil {
			curEmail = CleanupEmail(match[2])
			rcpt := entry(curEmail)
			rcpt.SMTPCode = match[1]
			rcpt.Errors = append(rcpt.Errors, strings.TrimSpace(match[3]))
		}
	}

	// responses seen before any RCPT TO were never tied to an address
	if _, ok := transcript.byEmail[""]; ok {
		delete(transcript.byEmail, "")
		order := transcript.order[:0]
		for _, addr := range transcript.order {
			if addr != "" {
				order = append(order, addr)
			}
		}
		transcript.order = order
	}

	return transcript
}
