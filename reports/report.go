package reports

import (
	"encoding/json"
	"strings"

	"github.com/abusix/bounce-parser/pkg/email"
)

// Report describes one recipient's delivery failure. Besides the derived
// fields it carries every key/value pair of the source delivery-status
// paragraph verbatim, in source order.
type Report struct {
	Email     string `json:"email"`
	Reason    string `json:"reason,omitempty"`
	StdReason Reason `json:"std_reason"`
	Host      string `json:"host,omitempty"`
	SMTPCode  string `json:"smtp_code,omitempty"`
	Raw       string `json:"raw,omitempty"`

	fields []email.Field
	index  map[string]int
}

// NewReport creates a Report with the default Unknown standardized reason
func NewReport() *Report {
	return &Report{StdReason: Unknown}
}

// Set records an attribute, keeping first-insertion order. Keys are
// lower-cased; setting an existing key overwrites its value in place.
func (r *Report) Set(key, value string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if pos, ok := r.index[key]; ok {
		r.fields[pos].Value = value
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, email.Field{Key: key, Value: value})
}

// Get returns the attribute value for a key, or ""
func (r *Report) Get(key string) string {
	if r.index == nil {
		return ""
	}
	if pos, ok := r.index[strings.ToLower(strings.TrimSpace(key))]; ok {
		return r.fields[pos].Value
	}
	return ""
}

// Fields returns the attribute bag in insertion order
func (r *Report) Fields() []email.Field {
	return r.fields
}

// MarshalJSON includes the ordered attribute bag alongside the fixed fields
func (r *Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(&struct {
		*Alias
		Fields []email.Field `json:"fields,omitempty"`
	}{
		Alias:  (*Alias)(r),
		Fields: r.fields,
	})
}

// BounceResult is the top-level classification outcome for one message.
// At most one of OrigMessage, OrigHeader and OrigText is populated;
// OrigMessageID may be set independently.
type BounceResult struct {
	IsBounce      bool                `json:"is_bounce"`
	NonBounceType string              `json:"non_bounce_type,omitempty"`
	Reports       []*Report           `json:"reports,omitempty"`
	OrigMessageID string              `json:"orig_message_id,omitempty"`
	OrigMessage   *email.Entity       `json:"orig_message,omitempty"`
	OrigHeader    map[string][]string `json:"orig_header,omitempty"`
	OrigText      string              `json:"orig_text,omitempty"`
}

// NewBounceResult creates a result that is a bounce until classified
// otherwise
func NewBounceResult() *BounceResult {
	return &BounceResult{IsBounce: true}
}

// NonBounce creates a result for a message that is not a delivery failure
func NonBounce(subtype string) *BounceResult {
	return &BounceResult{IsBounce: false, NonBounceType: subtype}
}
