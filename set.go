package using

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Named is a single member of a [Set].
type Named struct {
	Name     string
	Resource any
}

// Set is an ordered collection of named resources. Cleanup releases every
// member that supports the configured [Method].
type Set []Named

// Map builds a [Set] from m, ordered by key.
func Map[V any](m map[string]V) Set {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := make(Set, 0, len(keys))
	for _, k := range keys {
		set = append(set, Named{Name: k, Resource: m[k]})
	}
	return set
}

// Get returns the resource stored under name.
func (s Set) Get(name string) (any, bool) {
	for _, n := range s {
		if n.Name == name {
			return n.Resource, true
		}
	}
	return nil, false
}

// members enumerates v as a resource set. It accepts a Set, a map keyed by
// a string kind, and a struct (or a pointer to one) whose exported fields
// are the members. ok is false for anything else.
func members(v any) (set Set, ok bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case Set:
		return s, true
	case []Named:
		return Set(s), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

		set = make(Set, 0, len(keys))
		for _, k := range keys {
			set = append(set, Named{Name: k.String(), Resource: rv.MapIndex(k).Interface()})
		}
		return set, true

	case reflect.Struct:
		t := rv.Type()
		set = make(Set, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			set = append(set, Named{Name: f.Name, Resource: rv.Field(i).Interface()})
		}
		return set, true
	}

	return nil, false
}

const maxRenderedMembers = 8

// render formats v one level deep: member names and their dynamic types,
// never their contents.
func render(v any) string {
	set, ok := members(v)
	if !ok {
		return fmt.Sprintf("%T", v)
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, n := range set {
		if i == maxRenderedMembers {
			fmt.Fprintf(&b, ", ... %d more", len(set)-i)
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %T", n.Name, n.Resource)
	}
	b.WriteByte('}')
	return b.String()
}

// unexportedFields names the unexported fields of a struct resource set.
// They cannot be read without unsafe, so cleanup never visits them.
func unexportedFields(v any) []string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var out []string
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); !f.IsExported() {
			out = append(out, f.Name)
		}
	}
	return out
}
