package golive

import (
	"fmt"
	"reflect"
	"sync"
)

// stateTag is the struct tag marking component state fields.
const stateTag = "live"

// fieldIndex maps a state field name to its index path within the
// component struct (embedded structs included).
type fieldIndex map[string][]int

// fieldCache caches the field index per component type.
var fieldCache sync.Map // reflect.Type -> fieldIndex

// CaptureState reads every `live`-tagged field of the instance into a flat
// map. Called after mount and after every successful action so the client
// always receives the authoritative post-action state.
func CaptureState(c Component) map[string]any {
	v, idx := stateFields(c)
	state := make(map[string]any, len(idx))
	for name, path := range idx {
		state[name] = v.FieldByIndex(path).Interface()
	}
	return state
}

// Hydrate writes a client-submitted state map back onto the instance's
// `live`-tagged fields. It runs before an action is dispatched, so handlers
// observe the state the client believes is current.
//
// Keys that do not match a declared field are ignored - the client echoes
// server-added entries (the instance id, validation errors) that are not
// component state. Values are coerced to the field's type with the same
// rules as action parameters.
func Hydrate(c Component, state map[string]any) error {
	v, idx := stateFields(c)
	for name, value := range state {
		path, ok := idx[name]
		if !ok {
			continue
		}
		if err := setField(v.FieldByIndex(path), name, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single declared state field, coercing the value to the
// field's type. Used by the updateField_<name> pseudo-action that backs
// live two-way binding.
func SetField(c Component, name string, value any) error {
	v, idx := stateFields(c)
	path, ok := idx[name]
	if !ok {
		return fmt.Errorf("%w: %q on component %q", ErrFieldNotFound, name, c.ComponentName())
	}
	return setField(v.FieldByIndex(path), name, value)
}

func setField(field reflect.Value, name string, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	coerced, err := coerceValue(value, field.Type())
	if err != nil {
		return fmt.Errorf("golive: state field %q: %w", name, err)
	}
	field.Set(reflect.ValueOf(coerced))
	return nil
}

// stateFields returns the addressable struct value of the component and
// its (cached) field index.
func stateFields(c Component) (reflect.Value, fieldIndex) {
	v := reflect.ValueOf(c)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()
	if cached, ok := fieldCache.Load(t); ok {
		return v, cached.(fieldIndex)
	}
	idx := make(fieldIndex)
	collectFields(t, nil, idx)
	fieldCache.Store(t, idx)
	return v, idx
}

// collectFields walks the struct type, descending into embedded structs so
// components can share tagged fields through composition.
func collectFields(t reflect.Type, prefix []int, idx fieldIndex) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if name, ok := f.Tag.Lookup(stateTag); ok && name != "" && name != "-" {
			if f.IsExported() {
				idx[name] = path
			}
			continue
		}

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, path, idx)
		}
	}
}
