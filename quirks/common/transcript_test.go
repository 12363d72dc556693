package common

import "testing"

const sendmailTranscript = `   ----- Transcript of session follows -----
... while talking to mail.example.net.:
>>> RCPT To:<alice@example.net>
<<< 550 5.1.1 <alice@example.net>... User unknown
550 <alice@example.net>... User unknown
`

func TestAnalyzeTranscript(t *testing.T) {
	transcript := AnalyzeTranscript(sendmailTranscript)

	if transcript.Len() != 1 {
		t.Fatalf("expected 1 recipient, got %d", transcript.Len())
	}
	entry := transcript.Entry("alice@example.net")
	if entry == nil {
		t.Fatal("no entry for alice@example.net")
	}
	if entry.Host != "mail.example.net" {
		t.Errorf("host = %q, want mail.example.net", entry.Host)
	}
	if entry.SMTPCode != "550" {
		t.Errorf("smtp code = %q, want 550", entry.SMTPCode)
	}
	if len(entry.Errors) == 0 {
		t.Fatal("expected error lines")
	}
}

func TestAnalyzeTranscriptMultipleRecipients(t *testing.T) {
	text := `... while talking to mx1.example.com.:
>>> RCPT To:<bob@example.com>
<<< 552 Mailbox full
>>> RCPT To:<carol@example.com>
<<< 550 No such user

... while talking to mx2.example.org.:
>>> RCPT To:<dave@example.org>
<<< 450 Try again later
`
	transcript := AnalyzeTranscript(text)
	if transcript.Len() != 3 {
		t.Fatalf("expected 3 recipients, got %d", transcript.Len())
	}

	entries := transcript.Entries()
	if entries[0].Email != "bob@example.com" || entries[0].SMTPCode != "552" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Email != "carol@example.com" || entries[1].Host != "mx1.example.com" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[2].Host != "mx2.example.org" {
		t.Errorf("host state should follow the transcript, got %q", entries[2].Host)
	}
}

func TestAnalyzeTranscriptConsecutiveSummaryLines(t *testing.T) {
	text := `550 <first@example.net>... User unknown
550 <second@example.net>... Mailbox disabled
`
	transcript := AnalyzeTranscript(text)
	if transcript.Len() != 2 {
		t.Fatalf("expected 2 recipients, got %d", transcript.Len())
	}
	second := transcript.Entry("second@example.net")
	if second == nil {
		t.Fatal("no entry for second@example.net")
	}
	if second.SMTPCode != "550" {
		t.Errorf("smtp code = %q", second.SMTPCode)
	}
	if len(second.Errors) != 1 || second.Errors[0] != "Mailbox disabled" {
		t.Errorf("errors = %v", second.Errors)
	}
}

func TestAnalyzeTranscriptMultilineReply(t *testing.T) {
	text := `>>> RCPT To:<gone@example.net>
<<< 550-Requested action not taken
<<< 550 Mailbox unavailable
`
	transcript := AnalyzeTranscript(text)
	entry := transcript.Entry("gone@example.net")
	if entry == nil {
		t.Fatal("no entry for gone@example.net")
	}
	if len(entry.Errors) != 2 {
		t.Fatalf("every reply line should be recorded, got %v", entry.Errors)
	}
	if entry.Errors[1] != "Mailbox unavailable" {
		t.Errorf("second reply = %q", entry.Errors[1])
	}
	if entry.SMTPCode != "550" {
		t.Errorf("smtp code = %q", entry.SMTPCode)
	}
}

func TestAnalyzeTranscriptSummaryLine(t *testing.T) {
	text := `550 <gone@example.net>... User unknown
`
	transcript := AnalyzeTranscript(text)
	entry := transcript.Entry("gone@example.net")
	if entry == nil {
		t.Fatal("summary line should create an entry")
	}
	if entry.SMTPCode != "550" {
		t.Errorf("smtp code = %q", entry.SMTPCode)
	}
}
