package ims

import (
	"strings"
	"testing"

	"github.com/abusix/bounce-parser/pkg/email"
)

const singlePartBounce = `Your message

  To:      jdoe@example.com
  Subject: hello
  Sent:    Thu, 21 Aug 2003 17:26:40 -0400

did not reach the following recipient(s):

jdoe@example.com on Thu, 21 Aug 2003 17:30:00 -0400
    The recipient name is not recognized

Received: from mail.example.org by mailgate.example.com
From: sender@example.org
Subject: hello
`

func TestApplySinglePart(t *testing.T) {
	msg := &email.Entity{
		Headers: map[string][]string{
			"from":     {"System Administrator <postmaster@example.com>"},
			"x-mailer": {"Internet Mail Service (5.5.2650.21)"},
		},
		ContentType: "text/plain",
		Body:        singlePartBounce,
	}

	rebuilt := New().Apply(msg)
	if rebuilt == nil {
		t.Fatal("expected a rebuilt message")
	}
	if strings.Contains(rebuilt.Body, "  To:      jdoe@example.com") {
		t.Errorf("courtesy preamble survived:\n%s", rebuilt.Body)
	}
	if !strings.HasPrefix(rebuilt.Body, "did not reach the following recipient(s):") {
		t.Errorf("error text should lead the rebuilt body:\n%s", rebuilt.Body)
	}
	if !strings.Contains(rebuilt.Body, "----- Original message follows -----") {
		t.Errorf("no boundary marker:\n%s", rebuilt.Body)
	}
	if !strings.Contains(rebuilt.Body, "Received: from mail.example.org") {
		t.Errorf("quoted original lost:\n%s", rebuilt.Body)
	}
}

func TestApplyMultipartTruncatesInPlace(t *testing.T) {
	plain := email.NewPart("text/plain", singlePartBounce)
	msg := &email.Entity{
		Headers: map[string][]string{
			"x-mailer": {"Internet Mail Service (5.5.2653.19)"},
		},
		ContentType: "multipart/mixed",
		Parts: []*email.Entity{
			plain,
			email.NewPart("message/rfc822", ""),
		},
	}

	if got := New().Apply(msg); got != msg {
		t.Fatal("multipart form should be rewritten in place")
	}
	if !strings.HasPrefix(plain.Body, "did not reach the following recipient(s):") {
		t.Errorf("plain part not truncated:\n%s", plain.Body)
	}
}

func TestApplyIgnoresOtherMailers(t *testing.T) {
	msg := &email.Entity{
		Headers:     map[string][]string{"x-mailer": {"Some Other Mailer"}},
		ContentType: "text/plain",
		Body:        singlePartBounce,
	}
	if got := New().Apply(msg); got != nil {
		t.Error("other mailers should be left alone")
	}
}
