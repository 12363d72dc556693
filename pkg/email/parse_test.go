package email

import (
	"strings"
	"testing"
)

const multipartReport = `From: MAILER-DAEMON@example.com
To: sender@example.org
Subject: Returned mail
MIME-Version: 1.0
Content-Type: multipart/report; report-type=delivery-status; boundary="BOUND"

--BOUND
Content-Type: text/plain

The following message could not be delivered.
--BOUND
Content-Type: message/delivery-status

Reporting-MTA: dns; mx.example.com

Final-Recipient: rfc822; gone@example.net
Action: failed
--BOUND--
`

func TestParseMultipart(t *testing.T) {
	msg, err := Parse([]byte(multipartReport))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if msg.EffectiveType() != "multipart/report" {
		t.Errorf("type = %q, want multipart/report", msg.EffectiveType())
	}
	if msg.Params["report-type"] != "delivery-status" {
		t.Errorf("report-type param = %q", msg.Params["report-type"])
	}
	if len(msg.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(msg.Parts))
	}
	if msg.Parts[0].EffectiveType() != "text/plain" {
		t.Errorf("first part type = %q", msg.Parts[0].EffectiveType())
	}

	status := msg.FindPart("message/delivery-status")
	if status == nil {
		t.Fatal("delivery-status part not found")
	}
	if !strings.Contains(status.Body, "gone@example.net") {
		t.Errorf("delivery-status body missing recipient: %q", status.Body)
	}

	if got := msg.HeaderGet("subject"); got != "Returned mail" {
		t.Errorf("subject = %q", got)
	}
}

func TestParseDefaultsToPlainText(t *testing.T) {
	raw := "From: a@example.com\n\nhello\n"
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if msg.EffectiveType() != "text/plain" {
		t.Errorf("type = %q, want text/plain", msg.EffectiveType())
	}
	if !strings.Contains(msg.Body, "hello") {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestParseQuotedPrintable(t *testing.T) {
	raw := "From: a@example.com\nContent-Type: text/plain\nContent-Transfer-Encoding: quoted-printable\n\nuser=40example.com unknown\n"
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(msg.Body, "user@example.com unknown") {
		t.Errorf("quoted-printable not decoded: %q", msg.Body)
	}
}

func TestParseEmbeddedMessage(t *testing.T) {
	raw := `From: MAILER-DAEMON@example.com
Content-Type: multipart/mixed; boundary="XX"

--XX
Content-Type: text/plain

delivery failed
--XX
Content-Type: message/rfc822

From: original@example.org
Message-Id: <orig123@example.org>
Subject: hi

original body
--XX--
`
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	embedded := msg.FindPart("message/rfc822")
	if embedded == nil {
		t.Fatal("embedded message part not found")
	}
	if len(embedded.Parts) != 1 {
		t.Fatalf("embedded message not parsed into a child entity")
	}
	child := embedded.Parts[0]
	if got := child.HeaderGet("message-id"); got != "<orig123@example.org>" {
		t.Errorf("embedded message-id = %q", got)
	}
}

func TestParseHeaderBlock(t *testing.T) {
	block := "Subject: hello\n world\nFrom: a@example.com\n"
	headers := ParseHeaderBlock(block)
	if got := headers["subject"]; len(got) != 1 || got[0] != "hello world" {
		t.Errorf("folded header = %v", got)
	}
	if got := headers["from"]; len(got) != 1 || got[0] != "a@example.com" {
		t.Errorf("from = %v", got)
	}
}

func TestParseHeaderFields(t *testing.T) {
	paragraph := "Final-Recipient: rfc822; gone@example.net\nAction: failed\nStatus: 5.1.1\n"
	fields := ParseHeaderFields(paragraph)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Key != "Final-Recipient" {
		t.Errorf("first key = %q", fields[0].Key)
	}
	if fields[1].Value != "failed" {
		t.Errorf("action value = %q", fields[1].Value)
	}
}
