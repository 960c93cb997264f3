package cachekey

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// FromArgs derives key parameters from positional arguments.
// Structs are spread by field (JSON name when tagged), maps by key, and
// anything else is stored under its position as "argN".
func FromArgs(args ...any) Params {
	params := Params{}
	for i, arg := range args {
		if isNil(arg) {
			continue
		}
		if params.spread(arg) {
			continue
		}
		params["arg"+strconv.Itoa(i)] = arg
	}
	return params
}

// FromRequest derives key parameters from the request query string and the
// chi route parameters. Route parameters win over query values of the same name.
// Multi-valued query parameters are kept as slices.
func FromRequest(r *http.Request) Params {
	params := Params{}
	if r == nil {
		return params
	}

	for name, values := range r.URL.Query() {
		switch len(values) {
		case 0:
		case 1:
			params[name] = values[0]
		default:
			params[name] = values
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, name := range rctx.URLParams.Keys {
			if name == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			params[name] = rctx.URLParams.Values[i]
		}
	}

	return params
}

// Merge returns a new Params with the entries of all sets, later sets
// overriding earlier ones.
func Merge(sets ...Params) Params {
	out := Params{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

// spread copies the fields of a struct or the entries of a map into p.
// It reports false for any other kind.
func (p Params) spread(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			p[iter.Key().String()] = iter.Value().Interface()
		}
		return true
	case reflect.Struct:
		if _, ok := v.(interface{ String() string }); ok {
			return false
		}
		t := rv.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, skip := fieldName(f)
			if skip {
				continue
			}
			p[name] = rv.Field(i).Interface()
		}
		return true
	}
	return false
}

func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}
