package common

import (
	"github.com/abusix/bounce-parser/pkg/email"
)

// PlainPart returns the entity whose text the heuristics should inspect:
// the message itself when it is single-part, otherwise the first text/plain
// leaf, or nil
func PlainPart(msg *email.Entity) *email.Entity {
	if msg == nil {
		return nil
	}
	if !msg.IsMultipart() {
		return msg
	}
	for _, leaf := range msg.Leaves() {
		if leaf.EffectiveType() == "text/plain" {
			return leaf
		}
	}
	return nil
}

// PlainText returns the body of PlainPart, or ""
func PlainText(msg *email.Entity) string {
	part := PlainPart(msg)
	if part == nil {
		return ""
	}
	return part.Body
}
