package trace

import (
	"fmt"
	"strings"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/redux"
)

// Describer is implemented by actions that want a stable name and payload
// in the log. Other actions are logged by Go type with no fields.
type Describer interface {
	Kind() string
	Fields() canon.Object
}

// Record is one logged action.
type Record struct {
	ID     uint64       `json:"id"`
	Prev   uint64       `json:"prev"`
	Depth  uint32       `json:"depth"`
	Kind   string       `json:"kind"`
	Fields canon.Object `json:"fields"`
}

// FromAction builds a record from dispatch metadata and the action value.
func FromAction(meta redux.ActionMeta, action any) Record {
	return Record{
		ID:     meta.ID().Nanos(),
		Prev:   meta.Prev().Nanos(),
		Depth:  meta.Depth(),
		Kind:   KindOf(action),
		Fields: FieldsOf(action),
	}
}

// KindOf returns the action's Kind, or its unqualified Go type name.
func KindOf(action any) string {
	if d, ok := action.(interface{ Kind() string }); ok {
		return d.Kind()
	}
	name := fmt.Sprintf("%T", action)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// FieldsOf returns the action's Fields, or an empty object.
func FieldsOf(action any) canon.Object {
	if d, ok := action.(Describer); ok {
		if f := d.Fields(); f != nil {
			return f
		}
	}
	return canon.Object{}
}

// Value converts the record to a canonical object for hashing and golden
// output.
func (r Record) Value() canon.Object {
	fields := r.Fields
	if fields == nil {
		fields = canon.Object{}
	}
	return canon.Object{
		"id":     canon.Int(r.ID),
		"prev":   canon.Int(r.Prev),
		"depth":  canon.Int(r.Depth),
		"kind":   canon.String(r.Kind),
		"fields": fields,
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%d <- %d depth=%d %s", r.ID, r.Prev, r.Depth, r.Kind)
}

// Kinds returns the kind of each record, in order.
func Kinds(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Kind
	}
	return out
}
