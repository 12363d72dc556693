// Package xdeliverystatus retags the nonstandard message/xdelivery-status
// media type some MTAs emit to the standard message/delivery-status
package xdeliverystatus

import (
	"github.com/abusix/bounce-parser/pkg/email"
)

type Preprocessor struct{}

func New() *Preprocessor {
	return &Preprocessor{}
}

func (p *Preprocessor) Name() string {
	return "xdelivery-status"
}

// Apply retags matching sub-parts depth-first over the whole tree. Returns
// nil when no part needed retagging.
func (p *Preprocessor) Apply(msg *email.Entity) *email.Entity {
	changed := false
	msg.Walk(func(entity *email.Entity) {
		if entity.EffectiveType() == "message/xdelivery-status" {
			entity.SetType("message/delivery-status")
			changed = true
		}
	})
	if !changed {
		return nil
	}
	return msg
}
