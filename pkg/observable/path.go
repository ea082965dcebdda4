package observable

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// PathRelation classifies a changed path against a watched path.
type PathRelation uint8

const (
	// PathUnrelated means the change cannot affect the watched value.
	PathUnrelated PathRelation = iota
	// PathAncestor means the change happened at or above the watched path;
	// the watched value must be recomputed and may or may not differ.
	PathAncestor
	// PathChild means the change happened strictly inside the watched value,
	// which therefore always counts as changed.
	PathChild
)

// String returns the string representation of the PathRelation.
func (r PathRelation) String() string {
	switch r {
	case PathUnrelated:
		return "unrelated"
	case PathAncestor:
		return "ancestor"
	case PathChild:
		return "child"
	default:
		return "unknown"
	}
}

// ClassifyPath classifies changed against self by segment-aware prefix
// comparison. An empty changed path is the whole value and is therefore an
// ancestor of everything.
func ClassifyPath(self, changed string) PathRelation {
	switch {
	case changed == "" || changed == self:
		return PathAncestor
	case self == "" || strings.HasPrefix(changed, self+"."):
		return PathChild
	case strings.HasPrefix(self, changed+"."):
		return PathAncestor
	default:
		return PathUnrelated
	}
}

// relativePath returns changed relative to self, for a PathChild relation.
func relativePath(self, changed string) string {
	if self == "" {
		return changed
	}
	return strings.TrimPrefix(changed, self+".")
}

// PathJoin joins non-empty path segments with dots.
func PathJoin(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// PathGet returns the value found at a dotted path inside v. Maps with
// string keys are indexed by key, slices and arrays by index and structs by
// exported field name. Missing segments yield nil.
func PathGet(v any, path string) any {
	if path == "" {
		return v
	}
	cur := reflect.ValueOf(v)
	for _, seg := range splitPath(path) {
		cur = step(cur, seg)
		if !cur.IsValid() {
			return nil
		}
	}
	return cur.Interface()
}

func step(cur reflect.Value, seg string) reflect.Value {
	for cur.IsValid() && (cur.Kind() == reflect.Interface || cur.Kind() == reflect.Pointer) {
		if cur.IsNil() {
			return reflect.Value{}
		}
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return reflect.Value{}
	}

	switch cur.Kind() {
	case reflect.Map:
		if cur.Type().Key().Kind() != reflect.String {
			return reflect.Value{}
		}
		return cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= cur.Len() {
			return reflect.Value{}
		}
		return cur.Index(idx)
	case reflect.Struct:
		f, ok := cur.Type().FieldByName(seg)
		if !ok || !f.IsExported() {
			return reflect.Value{}
		}
		return cur.FieldByIndex(f.Index)
	}
	return reflect.Value{}
}

// PathSet writes value at path inside root, in place where possible, and
// returns the (possibly replaced) root and whether anything changed.
// Intermediate containers are created as map[string]any.
func PathSet(root any, path string, value any) (any, bool, error) {
	if path == "" {
		return value, !identical(root, value), nil
	}
	holder := reflect.New(reflect.TypeOf((*any)(nil)).Elem()).Elem()
	if root != nil {
		holder.Set(reflect.ValueOf(root))
	}
	next, changed, err := pathSet(holder, splitPath(path), value)
	if err != nil {
		return root, false, err
	}
	return next.Interface(), changed, nil
}

// pathSet returns the value that must replace cur after writing value at
// segs below it. Maps, slices and pointers are modified in place; structs and
// arrays are copied.
func pathSet(cur reflect.Value, segs []string, value any) (reflect.Value, bool, error) {
	seg, rest := segs[0], segs[1:]

	if cur.Kind() == reflect.Interface {
		if cur.IsNil() {
			cur = reflect.ValueOf(map[string]any{})
		} else {
			cur = cur.Elem()
		}
	}

	switch cur.Kind() {
	case reflect.Map:
		t := cur.Type()
		if t.Key().Kind() != reflect.String {
			return cur, false, fmt.Errorf("map key %s is not a string", t.Key())
		}
		if cur.IsNil() {
			cur = reflect.MakeMap(t)
		}
		key := reflect.ValueOf(seg).Convert(t.Key())
		existing := cur.MapIndex(key)

		if len(rest) == 0 {
			nv, err := convertTo(value, t.Elem())
			if err != nil {
				return cur, false, err
			}
			if existing.IsValid() && identical(existing.Interface(), nv.Interface()) {
				return cur, false, nil
			}
			cur.SetMapIndex(key, nv)
			return cur, true, nil
		}

		child := existing
		if !child.IsValid() {
			child = reflect.Zero(t.Elem())
		}
		next, changed, err := pathSet(child, rest, value)
		if err != nil || !changed {
			return cur, false, err
		}
		if !next.Type().AssignableTo(t.Elem()) {
			return cur, false, fmt.Errorf("cannot store %s in map of %s", next.Type(), t.Elem())
		}
		cur.SetMapIndex(key, next)
		return cur, true, nil

	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= cur.Len() {
			return cur, false, fmt.Errorf("index %q out of range [0,%d)", seg, cur.Len())
		}
		if cur.Kind() == reflect.Array && !cur.CanAddr() {
			cp := reflect.New(cur.Type()).Elem()
			cp.Set(cur)
			cur = cp
		}
		return setElem(cur, cur.Index(idx), rest, value)

	case reflect.Pointer:
		if cur.IsNil() {
			if cur.Type().Elem().Kind() != reflect.Struct {
				return cur, false, fmt.Errorf("nil %s", cur.Type())
			}
			cur = reflect.New(cur.Type().Elem())
		}
		next, changed, err := pathSet(cur.Elem(), segs, value)
		if err != nil || !changed {
			return cur, false, err
		}
		cur.Elem().Set(next)
		return cur, true, nil

	case reflect.Struct:
		cp := reflect.New(cur.Type()).Elem()
		cp.Set(cur)
		f, ok := cp.Type().FieldByName(seg)
		if !ok || !f.IsExported() {
			return cur, false, fmt.Errorf("%s has no exported field %q", cur.Type(), seg)
		}
		return setElem(cp, cp.FieldByIndex(f.Index), rest, value)
	}

	return cur, false, fmt.Errorf("cannot traverse %s at %q", cur.Kind(), seg)
}

// setElem writes into an addressable element of container.
func setElem(container, elem reflect.Value, rest []string, value any) (reflect.Value, bool, error) {
	if len(rest) == 0 {
		nv, err := convertTo(value, elem.Type())
		if err != nil {
			return container, false, err
		}
		if identical(elem.Interface(), nv.Interface()) {
			return container, false, nil
		}
		elem.Set(nv)
		return container, true, nil
	}

	next, changed, err := pathSet(elem, rest, value)
	if err != nil || !changed {
		return container, false, err
	}
	elem.Set(next)
	return container, true, nil
}

func convertTo(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		if t.Kind() == reflect.Interface {
			iv := reflect.New(t).Elem()
			iv.Set(rv)
			return iv, nil
		}
		return rv, nil
	}
	if convertible(rv.Type(), t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), t)
}

// FormatValue renders a value as text for the DOM: nil is empty, strings
// and scalars use their natural form and composite values are JSON encoded.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
