package readers

import (
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
)

// externalReferenceReader loads another asset named relative to the current
// one. It has no fixed target type.
type externalReferenceReader struct{}

func (externalReferenceReader) TargetType() reflect.Type { return nil }

func (externalReferenceReader) Read(r *xnb.ContentReader, _ xnb.Instance) (any, error) {
	return r.ReadExternalReference(nil)
}
