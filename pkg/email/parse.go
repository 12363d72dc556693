package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// Parse decodes a raw email into an Entity tree. Malformed input that
// net/mail cannot read at all is a hard failure; anything decodable degrades
// to a text/plain entity.
func Parse(raw []byte) (*Entity, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	return newEntity(msg.Header, msg.Body), nil
}

// newEntity builds one entity from its headers and (still encoded) body
func newEntity(headers map[string][]string, body io.Reader) *Entity {
	entity := &Entity{Headers: make(map[string][]string)}
	for key, values := range headers {
		entity.Headers[strings.ToLower(key)] = values
	}

	contentType := entity.HeaderGet("content-type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
		params = make(map[string]string)
	}
	entity.ContentType = strings.ToLower(mediaType)
	entity.Params = params

	data, err := io.ReadAll(body)
	if err != nil {
		return entity
	}

	if entity.IsMultipart() && params["boundary"] != "" {
		entity.Parts = parseParts(data, params["boundary"])
		return entity
	}

	decoded := decodeBody(data, entity.HeaderGet("content-transfer-encoding"))
	entity.Body = decodeCharset(decoded, params["charset"])

	// An embedded message becomes a single child entity so callers can
	// inspect its headers and parts like any other subtree.
	if entity.EffectiveType() == "message/rfc822" {
		if child, err := Parse(decoded); err == nil {
			entity.Parts = []*Entity{child}
		}
	}

	return entity
}

func parseParts(data []byte, boundary string) []*Entity {
	var parts []*Entity
	reader := multipart.NewReader(bytes.NewReader(data), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		parts = append(parts, newEntity(part.Header, part))
	}
	return parts
}

func decodeBody(body []byte, encoding string) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(body)))
		n, err := base64.StdEncoding.Decode(decoded, bytes.TrimSpace(body))
		if err == nil {
			return decoded[:n]
		}
	case "quoted-printable":
		reader := quotedprintable.NewReader(bytes.NewReader(body))
		decoded, err := io.ReadAll(reader)
		if err == nil {
			return decoded
		}
	}
	return body
}

// decodeCharset converts a body to UTF-8 using the declared charset,
// falling back to the raw bytes when the charset is unknown
func decodeCharset(data []byte, charset string) string {
	if charset == "" {
		return string(data)
	}
	encoding, err := ianaindex.IANA.Encoding(strings.ToLower(charset))
	if err != nil || encoding == nil {
		return string(data)
	}
	decoded, err := encoding.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
