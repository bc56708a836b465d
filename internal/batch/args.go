package batch

import "reflect"

// Args are the extra arguments passed alongside the window.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// NoArgs is the empty argument set.
var NoArgs = Args{}

// Positional builds Args from positional values.
func Positional(values ...any) Args {
	return Args{Positional: values}
}

// With returns a copy of a with key set to v.
func (a Args) With(key string, v any) Args {
	out := a.clone()
	if out.Keyword == nil {
		out.Keyword = map[string]any{}
	}
	out.Keyword[key] = v
	return out
}

// Arg returns the i-th positional argument, or nil.
func (a Args) Arg(i int) any {
	if i < 0 || i >= len(a.Positional) {
		return nil
	}
	return a.Positional[i]
}

// Kwarg returns the keyword argument named key, or def when unset.
func (a Args) Kwarg(key string, def any) any {
	if v, ok := a.Keyword[key]; ok {
		return v
	}
	return def
}

// Equal compares by value. Nil and empty collections are equal.
func (a Args) Equal(b Args) bool {
	if len(a.Positional) != len(b.Positional) || len(a.Keyword) != len(b.Keyword) {
		return false
	}
	for i := range a.Positional {
		if !reflect.DeepEqual(a.Positional[i], b.Positional[i]) {
			return false
		}
	}
	for k, av := range a.Keyword {
		bv, ok := b.Keyword[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}

func (a Args) clone() Args {
	out := Args{}
	if len(a.Positional) > 0 {
		out.Positional = append([]any(nil), a.Positional...)
	}
	if len(a.Keyword) > 0 {
		out.Keyword = make(map[string]any, len(a.Keyword))
		for k, v := range a.Keyword {
			out.Keyword[k] = v
		}
	}
	return out
}
