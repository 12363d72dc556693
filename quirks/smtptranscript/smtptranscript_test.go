package smtptranscript

import (
	"strings"
	"testing"

	"github.com/abusix/bounce-parser/pkg/email"
)

const transcriptBounce = `The original message was received at Thu, 21 Aug 2003 17:26:40 -0400
from localhost

   ----- The following addresses had permanent fatal errors -----
<gone@example.net>

   ----- Transcript of session follows -----
... while talking to mx.example.net.:
>>> RCPT To:<gone@example.net>
<<< 550 5.1.1 <gone@example.net>... User unknown

   ----- Original message follows -----

Return-Path: <sender@example.org>
Message-Id: <orig1@example.org>
Subject: hello
`

func makeMessage(body string) *email.Entity {
	return &email.Entity{
		Headers: map[string][]string{
			"from": {"MAILER-DAEMON@relay.example.org"},
			"date": {"Thu, 21 Aug 2003 17:30:00 -0400"},
		},
		ContentType: "text/plain",
		Body:        body,
	}
}

func TestApplyRebuildsReport(t *testing.T) {
	p := New()
	rebuilt := p.Apply(makeMessage(transcriptBounce))
	if rebuilt == nil {
		t.Fatal("expected a rebuilt message")
	}
	if rebuilt.EffectiveType() != "multipart/report" {
		t.Fatalf("rebuilt type = %q", rebuilt.EffectiveType())
	}

	status := rebuilt.FindPart("message/delivery-status")
	if status == nil {
		t.Fatal("no delivery-status part")
	}
	if !strings.Contains(status.Body, "Final-Recipient: rfc822; gone@example.net") {
		t.Errorf("recipient missing from status body:\n%s", status.Body)
	}
	if !strings.Contains(status.Body, "Action: failed") {
		t.Error("action missing from status body")
	}
	if !strings.Contains(status.Body, "host mx.example.net said: 550") {
		t.Errorf("diagnostic missing transcript outcome:\n%s", status.Body)
	}
	if !strings.Contains(status.Body, "Reporting-MTA: dns; relay.example.org") {
		t.Errorf("reporting mta not derived from the From domain:\n%s", status.Body)
	}

	headers := rebuilt.FindPart("text/rfc822-headers")
	if headers == nil {
		t.Fatal("no rfc822-headers part")
	}
	if !strings.Contains(headers.Body, "Message-Id: <orig1@example.org>") {
		t.Errorf("original headers missing:\n%s", headers.Body)
	}
}

func TestApplyIgnoresOtherBounces(t *testing.T) {
	p := New()
	if got := p.Apply(makeMessage("User unknown: gone@example.net")); got != nil {
		t.Error("plain bounce without a transcript should be left alone")
	}
	noTranscript := "   ----- The following addresses had permanent fatal errors -----\n<gone@example.net>\n"
	if got := p.Apply(makeMessage(noTranscript)); got != nil {
		t.Error("missing transcript phrase should be left alone")
	}
}
