package common

import "regexp"

// ReturnedMessageMarker matches the boundary phrases MTAs put between their
// error text and the quoted original message. Line-initial Return-Path,
// Received and From headers count as a boundary too: some MTAs quote the
// original with no marker at all.
var ReturnedMessageMarker = regexp.MustCompile(`(?im)` +
	`(?:original|returned)\s+message\s+(?:follows|below)` +
	`|this\s+is\s+a\s+copy\s+of\s+.{0,80}message` +
	`|your\s+original\s+mail` +
	`|message\s+header\s+follows` +
	`|^(?:return-path|received|from):`)

// ReceivedFromLine matches a quoted Received header, the strongest sign
// that a block of text is the original message rather than error text
var ReceivedFromLine = regexp.MustCompile(`(?im)^received:\s+from`)

// ErrorListingMarker matches the phrases MTAs use to introduce their list
// of failed recipients
var ErrorListingMarker = regexp.MustCompile(`(?i)` +
	`following\s+(?:recipients?|addresses?|errors?)` +
	`|errors?\s+(?:occurred|follow)` +
	`|could\s+not\s+be\s+delivered` +
	`|undeliverable` +
	`|delivery\s+(?:failure|failed)`)
