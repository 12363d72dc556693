// Package email provides the MIME entity tree the bounce pipeline operates on
package email

import (
	"strings"
)

// Entity is one node of a parsed MIME message: the whole message, a
// multipart container, or a leaf part. Bodies are decoded text; preprocessors
// rewrite entities in place or substitute whole subtrees, so every Entity has
// exactly one owner at any point in the pipeline.
type Entity struct {
	Headers     map[string][]string `json:"headers,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	Params      map[string]string   `json:"params,omitempty"`
	Body        string              `json:"body,omitempty"`
	Parts       []*Entity           `json:"parts,omitempty"`
}

// Field is one header-style key/value pair with its source order preserved
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewPart creates a leaf entity with the given media type and body
func NewPart(mediaType, body string) *Entity {
	return &Entity{
		Headers:     map[string][]string{"content-type": {mediaType}},
		ContentType: strings.ToLower(mediaType),
		Body:        body,
	}
}

// EffectiveType returns the entity's media type, defaulting to text/plain
func (e *Entity) EffectiveType() string {
	if e == nil || e.ContentType == "" {
		return "text/plain"
	}
	return strings.ToLower(e.ContentType)
}

// IsMultipart reports whether the entity is a multipart container
func (e *Entity) IsMultipart() bool {
	return strings.HasPrefix(e.EffectiveType(), "multipart/")
}

// HeaderGet returns the first value of the named header, or ""
func (e *Entity) HeaderGet(name string) string {
	if e == nil || e.Headers == nil {
		return ""
	}
	values := e.Headers[strings.ToLower(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// HeaderSet replaces the named header with a single value
func (e *Entity) HeaderSet(name, value string) {
	if e.Headers == nil {
		e.Headers = make(map[string][]string)
	}
	e.Headers[strings.ToLower(name)] = []string{value}
}

// SetType changes the entity's media type, keeping headers in sync
func (e *Entity) SetType(mediaType string) {
	e.ContentType = strings.ToLower(mediaType)
	e.HeaderSet("content-type", mediaType)
}

// Walk visits the entity and all descendants depth-first
func (e *Entity) Walk(fn func(*Entity)) {
	if e == nil {
		return
	}
	fn(e)
	for _, part := range e.Parts {
		part.Walk(fn)
	}
}

// FindPart returns the first descendant with the given effective type,
// searching depth-first, or nil
func (e *Entity) FindPart(mediaType string) *Entity {
	mediaType = strings.ToLower(mediaType)
	var found *Entity
	for _, part := range e.Parts {
		if found != nil {
			break
		}
		part.Walk(func(sub *Entity) {
			if found == nil && sub.EffectiveType() == mediaType {
				found = sub
			}
		})
	}
	return found
}

// FirstNonMultipart descends into the first part of each multipart container
// until a leaf entity is reached
func (e *Entity) FirstNonMultipart() *Entity {
	cur := e
	for cur != nil && cur.IsMultipart() {
		if len(cur.Parts) == 0 {
			return nil
		}
		cur = cur.Parts[0]
	}
	return cur
}

// Leaves returns all non-multipart descendants in depth-first order.
// A single-part message is its own leaf.
func (e *Entity) Leaves() []*Entity {
	if !e.IsMultipart() {
		return []*Entity{e}
	}
	var leaves []*Entity
	for _, part := range e.Parts {
		leaves = append(leaves, part.Leaves()...)
	}
	return leaves
}

// Clone returns a deep copy of the entity tree
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	clone := &Entity{
		ContentType: e.ContentType,
		Body:        e.Body,
	}
	if e.Headers != nil {
		clone.Headers = make(map[string][]string, len(e.Headers))
		for key, values := range e.Headers {
			clone.Headers[key] = append([]string(nil), values...)
		}
	}
	if e.Params != nil {
		clone.Params = make(map[string]string, len(e.Params))
		for key, value := range e.Params {
			clone.Params[key] = value
		}
	}
	for _, part := range e.Parts {
		clone.Parts = append(clone.Parts, part.Clone())
	}
	return clone
}

// ParseHeaderBlock parses header-formatted text into a map with lower-cased
// keys. Continuation lines (leading whitespace) are folded into the previous
// value.
func ParseHeaderBlock(text string) map[string][]string {
	headers := make(map[string][]string)
	var lastKey string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			lastKey = ""
			continue
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && lastKey != "" {
			values := headers[lastKey]
			values[len(values)-1] += " " + strings.TrimSpace(line)
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			lastKey = ""
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		headers[key] = append(headers[key], strings.TrimSpace(line[idx+1:]))
		lastKey = key
	}
	return headers
}

// ParseHeaderFields parses header-formatted text into an ordered field list,
// folding continuation lines. Keys keep their source spelling.
func ParseHeaderFields(text string) []Field {
	var fields []Field
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(fields) > 0 {
			fields[len(fields)-1].Value += " " + strings.TrimSpace(line)
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		fields = append(fields, Field{
			Key:   strings.TrimSpace(line[:idx]),
			Value: strings.TrimSpace(line[idx+1:]),
		})
	}
	return fields
}
