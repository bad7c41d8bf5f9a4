package golive

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Pseudo-actions handled before table lookup.
const (
	// refreshAction forces a re-render of current state without mutating
	// anything. Sent by the polling binding.
	refreshAction = "__refresh"

	// updateFieldPrefix marks a direct field assignment from live:model
	// two-way binding; the remainder of the name is the state field.
	updateFieldPrefix = "updateField_"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// actionDef is a registration-time record of one action handler: the
// function plus its analyzed signature. Building this once per constructor
// removes any per-request method search.
type actionDef struct {
	name       string
	fn         reflect.Value
	in         []reflect.Type // declared params, context excluded
	wantsCtx   bool
	returnsErr bool
}

func newActionDef(name string, handler any) (*actionDef, error) {
	fn := reflect.ValueOf(handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("action %q: handler must be a func, got %T", name, handler)
	}

	t := fn.Type()
	def := &actionDef{name: name, fn: fn}

	start := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		def.wantsCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		def.in = append(def.in, t.In(i))
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if !t.Out(0).Implements(errType) {
			return nil, fmt.Errorf("action %q: single return value must be error", name)
		}
		def.returnsErr = true
	default:
		return nil, fmt.Errorf("action %q: at most one (error) return value allowed", name)
	}

	return def, nil
}

// Dispatch resolves an action name against the instance's action table and
// invokes the handler with positionally coerced parameters.
//
// Two pseudo-actions bypass the table: __refresh is a no-op used by polling
// to force a re-render, and updateField_<name> assigns a single value to
// the named state field for live two-way binding.
//
// Missing trailing parameters become the declared type's zero value; excess
// parameters fail with ErrActionNotFound, mirroring lookup by name and
// arity. A parameter that cannot be converted fails fast with a
// *CoercionError.
func Dispatch(ctx context.Context, c Component, action string, params []any) error {
	if action == refreshAction {
		return nil
	}

	if field, ok := strings.CutPrefix(action, updateFieldPrefix); ok {
		var value any
		if len(params) > 0 {
			value = params[0]
		}
		return SetField(c, field, value)
	}

	def, ok := c.actionTable()[action]
	if !ok {
		return fmt.Errorf("%w: %q on component %q", ErrActionNotFound, action, c.ComponentName())
	}
	if len(params) > len(def.in) {
		return fmt.Errorf("%w: %q on component %q takes %d params, got %d",
			ErrActionNotFound, action, c.ComponentName(), len(def.in), len(params))
	}

	args := make([]reflect.Value, 0, len(def.in)+1)
	if def.wantsCtx {
		args = append(args, reflect.ValueOf(ctx))
	}
	for i, t := range def.in {
		var raw any
		if i < len(params) {
			raw = params[i]
		}
		if raw == nil {
			args = append(args, reflect.Zero(t))
			continue
		}
		coerced, err := coerceValue(raw, t)
		if err != nil {
			return &CoercionError{Action: action, Position: i, Value: raw, Target: t.String()}
		}
		args = append(args, reflect.ValueOf(coerced))
	}

	out := def.fn.Call(args)
	if def.returnsErr && !out[0].IsNil() {
		return &ActionError{Component: c.ComponentName(), Action: action, Err: out[0].Interface().(error)}
	}
	return nil
}

// coerceValue converts a decoded JSON value to the target type.
//
// Values pass through unchanged when already assignable. Otherwise textual
// and numeric representations are parsed into the integer, floating, bool,
// or string shape the target requires; numeric and bool targets fail when
// parsing is impossible. Slices and maps coerce element-wise so JSON's
// []any / map[string]any reach typed fields.
func coerceValue(v any, target reflect.Type) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target) {
		return v, nil
	}

	switch target.Kind() {
	case reflect.Interface:
		if target.NumMethod() == 0 {
			return v, nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isNumeric(rv.Kind()) {
			return rv.Convert(target).Interface(), nil
		}
		if s, ok := v.(string); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot parse %q as %s", s, target.Kind())
			}
			return reflect.ValueOf(n).Convert(target).Interface(), nil
		}

	case reflect.Float32, reflect.Float64:
		if isNumeric(rv.Kind()) {
			return rv.Convert(target).Interface(), nil
		}
		if s, ok := v.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("cannot parse %q as %s", s, target.Kind())
			}
			return reflect.ValueOf(f).Convert(target).Interface(), nil
		}

	case reflect.Bool:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("cannot parse %q as bool", s)
			}
			return b, nil
		}

	case reflect.String:
		return fmt.Sprint(v), nil

	case reflect.Slice:
		if src, ok := v.([]any); ok {
			out := reflect.MakeSlice(target, len(src), len(src))
			for i, el := range src {
				if el == nil {
					continue
				}
				c, err := coerceValue(el, target.Elem())
				if err != nil {
					return nil, err
				}
				out.Index(i).Set(reflect.ValueOf(c))
			}
			return out.Interface(), nil
		}

	case reflect.Map:
		if src, ok := v.(map[string]any); ok && target.Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(target, len(src))
			for k, el := range src {
				if el == nil {
					out.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), reflect.Zero(target.Elem()))
					continue
				}
				c, err := coerceValue(el, target.Elem())
				if err != nil {
					return nil, err
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), reflect.ValueOf(c))
			}
			return out.Interface(), nil
		}
	}

	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("cannot coerce %T to %s", v, target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
