package golive

import (
	"reflect"
	"testing"

	"github.com/a-h/templ"
)

func TestLiveAttrs(t *testing.T) {
	tests := []struct {
		name  string
		attrs *LiveAttrs
		want  templ.Attributes
	}{
		{
			name:  "click",
			attrs: Click("increment"),
			want:  templ.Attributes{"live:click": "increment"},
		},
		{
			name:  "click with confirm",
			attrs: Click("reset()").Confirm("Really?"),
			want:  templ.Attributes{"live:click": "reset()", "live:confirm": "Really?"},
		},
		{
			name:  "model with debounce",
			attrs: Model("query").Debounce(500),
			want:  templ.Attributes{"live:model": "query", "live:debounce": "500"},
		},
		{
			name:  "lazy model",
			attrs: Model("name").Lazy(),
			want:  templ.Attributes{"live:model": "name", "live:lazy": ""},
		},
		{
			name:  "blur model",
			attrs: Model("email").Blur(),
			want:  templ.Attributes{"live:model": "email", "live:blur": ""},
		},
		{
			name:  "submit with loading class",
			attrs: Submit("save").LoadingClass("busy"),
			want:  templ.Attributes{"live:submit": "save", "live:loading.class": "busy"},
		},
		{
			name:  "poll with interval",
			attrs: Poll("__refresh", "5s"),
			want:  templ.Attributes{"live:poll.5s": "__refresh"},
		},
		{
			name:  "poll default interval",
			attrs: Poll("tick", ""),
			want:  templ.Attributes{"live:poll": "tick"},
		},
		{
			name:  "init",
			attrs: Init("load"),
			want:  templ.Attributes{"live:init": "load"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.attrs.Attrs()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Attrs() = %v, want %v", got, tt.want)
			}
		})
	}
}
