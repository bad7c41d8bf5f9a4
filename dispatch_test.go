package golive

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func typeOf(v any) reflect.Type { return reflect.TypeOf(v) }

// gadget covers every handler signature shape Dispatch supports.
type gadget struct {
	*Base
	Count int    `live:"count"`
	Label string `live:"label"`

	gotCtx bool
}

func newGadget() *gadget {
	g := &gadget{Base: NewBase("gadget")}
	g.Action("bump", func() { g.Count++ })
	g.Action("add", func(n int) { g.Count += n })
	g.Action("label", func(s string) { g.Label = s })
	g.Action("pair", func(s string, n int) { g.Label, g.Count = s, n })
	g.Action("fail", func() error { return errors.New("boom") })
	g.Action("load", func(ctx context.Context) error {
		g.gotCtx = ctx != nil
		return ctx.Err()
	})
	return g
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("no params", func(t *testing.T) {
		g := newGadget()
		if err := Dispatch(ctx, g, "bump", nil); err != nil {
			t.Fatalf("Dispatch(bump) error = %v", err)
		}
		if g.Count != 1 {
			t.Errorf("Count = %d, want 1", g.Count)
		}
	})

	t.Run("typed params from grammar", func(t *testing.T) {
		g := newGadget()
		// Grammar integers arrive as int64 and must land in int params.
		if err := Dispatch(ctx, g, "add", []any{int64(5)}); err != nil {
			t.Fatalf("Dispatch(add) error = %v", err)
		}
		if g.Count != 5 {
			t.Errorf("Count = %d, want 5", g.Count)
		}
	})

	t.Run("typed params from json", func(t *testing.T) {
		g := newGadget()
		// JSON numbers arrive as float64.
		if err := Dispatch(ctx, g, "add", []any{float64(3)}); err != nil {
			t.Fatalf("Dispatch(add) error = %v", err)
		}
		if g.Count != 3 {
			t.Errorf("Count = %d, want 3", g.Count)
		}
	})

	t.Run("multiple params", func(t *testing.T) {
		g := newGadget()
		if err := Dispatch(ctx, g, "pair", []any{"on", int64(2)}); err != nil {
			t.Fatalf("Dispatch(pair) error = %v", err)
		}
		if g.Label != "on" || g.Count != 2 {
			t.Errorf("Label, Count = %q, %d", g.Label, g.Count)
		}
	})

	t.Run("missing trailing params zero filled", func(t *testing.T) {
		g := newGadget()
		g.Count = 7
		if err := Dispatch(ctx, g, "pair", []any{"solo"}); err != nil {
			t.Fatalf("Dispatch(pair) error = %v", err)
		}
		if g.Label != "solo" || g.Count != 0 {
			t.Errorf("Label, Count = %q, %d, want solo, 0", g.Label, g.Count)
		}
	})

	t.Run("excess params rejected", func(t *testing.T) {
		g := newGadget()
		err := Dispatch(ctx, g, "bump", []any{int64(1)})
		if !errors.Is(err, ErrActionNotFound) {
			t.Errorf("Dispatch(bump, 1) error = %v, want ErrActionNotFound", err)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		g := newGadget()
		err := Dispatch(ctx, g, "vanish", nil)
		if !IsActionNotFound(err) {
			t.Errorf("Dispatch(vanish) error = %v, want ErrActionNotFound", err)
		}
	})

	t.Run("handler error wrapped", func(t *testing.T) {
		g := newGadget()
		err := Dispatch(ctx, g, "fail", nil)
		var ae *ActionError
		if !errors.As(err, &ae) {
			t.Fatalf("Dispatch(fail) error = %T, want *ActionError", err)
		}
		if ae.Action != "fail" || ae.Err.Error() != "boom" {
			t.Errorf("ActionError = %+v", ae)
		}
	})

	t.Run("context passed through", func(t *testing.T) {
		g := newGadget()
		if err := Dispatch(ctx, g, "load", nil); err != nil {
			t.Fatalf("Dispatch(load) error = %v", err)
		}
		if !g.gotCtx {
			t.Error("handler did not receive context")
		}
	})

	t.Run("coercion failure", func(t *testing.T) {
		g := newGadget()
		err := Dispatch(ctx, g, "add", []any{"not a number"})
		var ce *CoercionError
		if !errors.As(err, &ce) {
			t.Fatalf("Dispatch(add, string) error = %T, want *CoercionError", err)
		}
		if ce.Position != 0 {
			t.Errorf("CoercionError.Position = %d, want 0", ce.Position)
		}
		if !IsCoercionError(err) {
			t.Error("IsCoercionError() = false")
		}
	})

	t.Run("nil param becomes zero value", func(t *testing.T) {
		g := newGadget()
		g.Label = "set"
		if err := Dispatch(ctx, g, "label", []any{nil}); err != nil {
			t.Fatalf("Dispatch(label, nil) error = %v", err)
		}
		if g.Label != "" {
			t.Errorf("Label = %q, want empty", g.Label)
		}
	})
}

func TestDispatchRefresh(t *testing.T) {
	g := newGadget()
	g.Count = 4

	if err := Dispatch(context.Background(), g, "__refresh", nil); err != nil {
		t.Fatalf("Dispatch(__refresh) error = %v", err)
	}
	if g.Count != 4 {
		t.Errorf("__refresh mutated state: Count = %d, want 4", g.Count)
	}
}

func TestDispatchUpdateField(t *testing.T) {
	g := newGadget()

	if err := Dispatch(context.Background(), g, "updateField_label", []any{"typed"}); err != nil {
		t.Fatalf("Dispatch(updateField_label) error = %v", err)
	}
	if g.Label != "typed" {
		t.Errorf("Label = %q, want %q", g.Label, "typed")
	}
	if g.Count != 0 {
		t.Errorf("updateField touched another field: Count = %d", g.Count)
	}

	err := Dispatch(context.Background(), g, "updateField_missing", []any{"x"})
	if !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("updateField_missing error = %v, want ErrFieldNotFound", err)
	}
}

func TestActionRegistrationPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Base)
	}{
		{"duplicate name", func(b *Base) {
			b.Action("x", func() {})
			b.Action("x", func() {})
		}},
		{"non func handler", func(b *Base) {
			b.Action("x", 42)
		}},
		{"non error return", func(b *Base) {
			b.Action("x", func() int { return 0 })
		}},
		{"two returns", func(b *Base) {
			b.Action("x", func() (int, error) { return 0, nil })
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(NewBase("panics"))
		})
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target any // zero value carrying the target type
		want   any
	}{
		{"int64 to int", int64(7), int(0), 7},
		{"float64 to int", float64(7), int(0), 7},
		{"string to int", " 7 ", int(0), 7},
		{"float64 to float32", float64(1.5), float32(0), float32(1.5)},
		{"string to float", "2.5", float64(0), 2.5},
		{"string to bool", "true", false, true},
		{"int to string", 42, "", "42"},
		{"any slice to strings", []any{"a", "b"}, []string(nil), []string{"a", "b"}},
		{"any map to ints", map[string]any{"a": float64(1)}, map[string]int(nil), map[string]int{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceValue(tt.value, typeOf(tt.target))
			if err != nil {
				t.Fatalf("coerceValue() error = %v", err)
			}
			if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", tt.want) {
				t.Errorf("coerceValue(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}

	t.Run("failures", func(t *testing.T) {
		if _, err := coerceValue("x", typeOf(0)); err == nil {
			t.Error("string to int: want error")
		}
		if _, err := coerceValue("x", typeOf(false)); err == nil {
			t.Error("string to bool: want error")
		}
		if _, err := coerceValue([]any{"x"}, typeOf([]int(nil))); err == nil {
			t.Error("bad slice element: want error")
		}
	})
}
