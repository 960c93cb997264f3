package cachekey

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// DefaultVersion is the key schema version prepended to every key.
// Bump it to orphan all previously written entries at once.
const DefaultVersion = "v1"

// Separator joins key segments.
const Separator = ":"

// dateLayout is used for analytics range bounds.
const dateLayout = "2006-01-02"

// Params is a set of named key parameters. Nil values are skipped.
type Params map[string]any

// Option configures key generation.
type Option func(*options)

type options struct {
	version string
}

// WithVersion overrides the default schema version.
// An empty version is ignored.
func WithVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.version = v
		}
	}
}

func resolve(opts []Option) *options {
	o := &options{version: DefaultVersion}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate builds a deterministic cache key from a prefix and a set of named
// parameters. Parameter order never affects the result.
//
// Example:
//
//	cachekey.Generate("admin:users", cachekey.Params{"page": 1, "limit": 10, "search": "john"})
//	// v1:admin:users:limit=10:page=1:search=john
func Generate(prefix string, params Params, opts ...Option) string {
	o := resolve(opts)

	names := make([]string, 0, len(params))
	for name, v := range params {
		if isNil(v) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names)+2)
	parts = append(parts, o.version, prefix)
	for _, name := range names {
		parts = append(parts, name+"="+serialize(params[name]))
	}

	return strings.Join(parts, Separator)
}

// Simple builds a key for a single entity identified by id.
func Simple(prefix, id string, opts ...Option) string {
	return Generate(prefix+Separator+id, nil, opts...)
}

// List builds a key for a paginated listing. Page defaults to 1 and limit
// to 10 when not positive. Pagination overrides same-named filters.
func List(prefix string, page, limit int, filters Params, opts ...Option) string {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	params := make(Params, len(filters)+2)
	for k, v := range filters {
		params[k] = v
	}
	params["page"] = page
	params["limit"] = limit

	return Generate(prefix, params, opts...)
}

// Analytics builds a key for a date-range report. Absent bounds and an
// empty interval are omitted from the key.
func Analytics(prefix string, from, to *time.Time, interval string, opts ...Option) string {
	params := Params{}
	if from != nil {
		params["from"] = from.UTC().Format(dateLayout)
	}
	if to != nil {
		params["to"] = to.UTC().Format(dateLayout)
	}
	if interval != "" {
		params["interval"] = interval
	}
	return Generate(prefix, params, opts...)
}

// Pattern builds a deletion pattern under prefix. The pattern is appended
// verbatim, so it may carry a trailing wildcard.
//
//	cachekey.Pattern("products", "*") // v1:products:*
func Pattern(prefix, pattern string, opts ...Option) string {
	o := resolve(opts)
	return strings.Join([]string{o.version, prefix, pattern}, Separator)
}

// serialize renders a single parameter value.
// Slices join their elements with commas, maps and structs become
// canonical JSON, everything else is coerced with fmt. Nil values,
// including nil slice elements and nil pointers, render as "".
func serialize(v any) string {
	if isNil(v) {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]string, 0, rv.Len())
		for i := range rv.Len() {
			elems = append(elems, serialize(rv.Index(i).Interface()))
		}
		return strings.Join(elems, ",")
	case reflect.Map, reflect.Struct:
		// encoding/json sorts map keys, which keeps the output canonical.
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		return string(data)
	default:
		return fmt.Sprint(rv.Interface())
	}
}

// isNil reports whether v is nil or a typed nil reference.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
