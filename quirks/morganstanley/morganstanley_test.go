package morganstanley

import (
	"strings"
	"testing"

	"github.com/abusix/bounce-parser/pkg/email"
)

const gatewayBounce = `   ----- The following addresses had delivery problems -----

jsmith   (unrecoverable error)

   ----- Your original message follows -----

Received: from mail.example.org by gateway.ms.com
	with ESMTP id RAA13616
	for <jsmith@ms.com>; Thu, 21 Aug 2003 17:26:40 -0400
From: sender@example.org
Subject: quarterly numbers
`

func makeMessage(from, body string) *email.Entity {
	return &email.Entity{
		Headers:     map[string][]string{"from": {from}},
		ContentType: "text/plain",
		Body:        body,
	}
}

func TestApplyQualifiesBareRecipient(t *testing.T) {
	rebuilt := New().Apply(makeMessage("MAILER-DAEMON@ms.com", gatewayBounce))
	if rebuilt == nil {
		t.Fatal("expected a rebuilt message")
	}
	if rebuilt.EffectiveType() != "text/plain" {
		t.Fatalf("rebuilt type = %q", rebuilt.EffectiveType())
	}
	if !strings.Contains(rebuilt.Body, "jsmith@ms.com   (unrecoverable error)") {
		t.Errorf("bare recipient not qualified:\n%s", rebuilt.Body)
	}
	// the literal line survives next to the repaired one
	if !strings.Contains(rebuilt.Body, "\njsmith   (unrecoverable error)") {
		t.Errorf("literal listing line lost:\n%s", rebuilt.Body)
	}
	if !strings.Contains(rebuilt.Body, "Received: from mail.example.org") {
		t.Errorf("original message lost:\n%s", rebuilt.Body)
	}
}

func TestApplyIgnoresOtherSenders(t *testing.T) {
	if got := New().Apply(makeMessage("MAILER-DAEMON@example.com", gatewayBounce)); got != nil {
		t.Error("non-gateway sender should be left alone")
	}
}

func TestApplyNeedsBothHalves(t *testing.T) {
	// an error listing with no quoted original cannot be oriented
	listing := "   ----- The following addresses had delivery problems -----\n\njsmith\n"
	if got := New().Apply(makeMessage("MAILER-DAEMON@emory.edu", listing)); got != nil {
		t.Error("listing without an original should be left alone")
	}
}
