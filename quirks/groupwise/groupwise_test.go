package groupwise

import (
	"strings"
	"testing"

	"github.com/abusix/bounce-parser/pkg/email"
)

func makeMessage() (*email.Entity, *email.Entity) {
	plain := email.NewPart("text/plain", `The message could not be delivered to:

       jdoe    (Mailbox full)
`)
	msg := &email.Entity{
		Headers: map[string][]string{
			"from":     {"Mailer-Daemon@gw.example.com"},
			"x-mailer": {"Novell GroupWise 5.2"},
		},
		ContentType: "multipart/mixed",
		Parts:       []*email.Entity{plain},
	}
	return msg, plain
}

func TestApplyQualifiesBareName(t *testing.T) {
	msg, plain := makeMessage()
	if got := New().Apply(msg); got != msg {
		t.Fatal("expected the message rewritten in place")
	}
	if !strings.Contains(plain.Body, "       jdoe@gw.example.com    (Mailbox full)") {
		t.Errorf("bare name not qualified:\n%s", plain.Body)
	}
}

func TestApplyLeavesQualifiedNames(t *testing.T) {
	msg, plain := makeMessage()
	plain.Body = "The message could not be delivered to:\n\n       jdoe@elsewhere.com    (Mailbox full)\n"
	if got := New().Apply(msg); got != msg {
		t.Fatal("expected the message returned")
	}
	if strings.Contains(plain.Body, "elsewhere.com@gw.example.com") {
		t.Errorf("qualified name must not be re-qualified:\n%s", plain.Body)
	}
}

func TestApplyNeedsGroupWise(t *testing.T) {
	msg, _ := makeMessage()
	msg.Headers["x-mailer"] = []string{"Internet Mail Service"}
	if got := New().Apply(msg); got != nil {
		t.Error("other mailers should be left alone")
	}
}
