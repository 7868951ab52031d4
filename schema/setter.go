package schema

import (
	"reflect"
	"unsafe"
)

// Setter stores value into one field of the struct at structPtr. value must
// already have the field's type.
type Setter func(structPtr unsafe.Pointer, value reflect.Value)

// NewSetter builds a direct setter for f, addressing the field by its offset
// inside owner. Only top-level fields are addressed; Inspect never yields
// promoted ones.
func NewSetter(owner reflect.Type, f *FieldMeta) Setter {
	offset := owner.Field(f.Index[0]).Offset
	fieldType := f.Type

	return func(structPtr unsafe.Pointer, value reflect.Value) {
		target := reflect.NewAt(fieldType, unsafe.Add(structPtr, offset)).Elem()
		if !value.IsValid() {
			target.Set(reflect.Zero(fieldType))
			return
		}
		target.Set(value)
	}
}
