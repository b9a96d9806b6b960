package odd

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// ClassKey is the document key naming the class of an encoded odd object.
// It is always written first.
const ClassKey = "^O"

// Format adapts a wire library's document types to the tree walkers.
type Format struct {
	// Object builds the library's ordered document from fields. The class key
	// is fields[0].
	Object func(fields []Field) any

	// Fields reports the fields of v when v is one of the library's document types.
	Fields func(v any) ([]Field, bool)

	// Normalize, when set, rewrites decoded leaves and sequences before they are
	// inspected, e.g. json.Number to int64 or a library array type to []any.
	Normalize func(v any) any
}

// EncodeTree replaces every odd value reachable from v with a document holding
// its class name and attributes. Attribute values, slice and array elements,
// map values and pointees are walked in turn. Typed containers holding an odd
// value are rewritten to []any or map[string]any; containers holding none are
// returned as they are. An odd value inside a struct field, or inside a map
// whose keys are not strings, fails with ErrUnsupportedContainer.
func EncodeTree(ctx context.Context, t *Table, v any, f Format) (any, error) {
	e := &encoder{ctx: ctx, t: t, f: f, holds: make(map[reflect.Type]bool)}
	out, _, err := e.walk(v, 0)
	return out, err
}

// maxDepth bounds nesting so cyclic values fail instead of overflowing the stack.
const maxDepth = 1000

type encoder struct {
	ctx   context.Context
	t     *Table
	f     Format
	holds map[reflect.Type]bool
}

// walk returns the encoded form of v and whether it differs from v.
func (e *encoder) walk(v any, depth int) (any, bool, error) {
	if v == nil {
		return nil, false, nil
	}
	if depth > maxDepth {
		return nil, false, fmt.Errorf("%w: nesting deeper than %d", ErrUnsupportedContainer, maxDepth)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, false, nil
	}

	if d, ok := e.t.ByClass(rv.Type()); ok {
		obj, err := encodeObject(e, d, v, depth)
		return obj, true, err
	}

	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		changed := false
		for i, el := range x {
			ev, ch, err := e.walk(el, depth+1)
			if err != nil {
				return nil, false, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
			changed = changed || ch
		}
		return out, changed, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		changed := false
		for k, el := range x {
			ev, ch, err := e.walk(el, depth+1)
			if err != nil {
				return nil, false, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = ev
			changed = changed || ch
		}
		return out, changed, nil
	}

	if !e.mayHold(rv.Type()) {
		return v, false, nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		ev, ch, err := e.walk(rv.Elem().Interface(), depth+1)
		if err != nil || !ch {
			return v, false, err
		}
		return ev, true, nil
	case reflect.Slice, reflect.Array:
		return e.walkSeq(rv, depth)
	case reflect.Map:
		return e.walkMap(rv, depth)
	case reflect.Struct:
		return v, false, e.checkStruct(rv, depth)
	}
	return v, false, nil
}

func (e *encoder) walkSeq(rv reflect.Value, depth int) (any, bool, error) {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return rv.Interface(), false, nil
	}
	out := make([]any, rv.Len())
	changed := false
	for i := range out {
		el := rv.Index(i).Interface()
		ev, ch, err := e.walk(el, depth+1)
		if err != nil {
			return nil, false, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = ev
		changed = changed || ch
	}
	if !changed {
		return rv.Interface(), false, nil
	}
	return out, true, nil
}

func (e *encoder) walkMap(rv reflect.Value, depth int) (any, bool, error) {
	if rv.IsNil() {
		return rv.Interface(), false, nil
	}
	type entry struct {
		key reflect.Value
		val any
	}
	entries := make([]entry, 0, rv.Len())
	changed := false
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		ev, ch, err := e.walk(iter.Value().Interface(), depth+1)
		if err != nil {
			return nil, false, fmt.Errorf("%v: %w", k.Interface(), err)
		}
		entries = append(entries, entry{key: k, val: ev})
		changed = changed || ch
	}
	if !changed {
		return rv.Interface(), false, nil
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, false, fmt.Errorf("%w: %s has non-string keys", ErrUnsupportedContainer, rv.Type())
	}
	out := make(map[string]any, len(entries))
	for _, en := range entries {
		out[en.key.String()] = en.val
	}
	return out, true, nil
}

// checkStruct fails when an exported field of rv holds an odd value. Structs
// are written by the wire library itself, which would bypass the table.
func (e *encoder) checkStruct(rv reflect.Value, depth int) error {
	typ := rv.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || !e.mayHold(sf.Type) {
			continue
		}
		_, ch, err := e.walk(rv.Field(i).Interface(), depth+1)
		if err != nil {
			return fmt.Errorf("%s: %w", sf.Name, err)
		}
		if ch {
			return fmt.Errorf("%w: odd value in field %s.%s", ErrUnsupportedContainer, typ, sf.Name)
		}
	}
	return nil
}

// mayHold reports whether a value of typ can contain an odd value.
func (e *encoder) mayHold(typ reflect.Type) bool {
	if h, ok := e.holds[typ]; ok {
		return h
	}
	if _, ok := e.t.ByClass(typ); ok {
		e.holds[typ] = true
		return true
	}

	// Assume yes while resolving so recursive types terminate without
	// memoizing a premature no for their containers.
	e.holds[typ] = true
	h := false
	switch typ.Kind() {
	case reflect.Interface:
		h = true
	case reflect.Ptr, reflect.Slice, reflect.Array:
		h = e.mayHold(typ.Elem())
	case reflect.Map:
		h = e.mayHold(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField() && !h; i++ {
			sf := typ.Field(i)
			h = sf.IsExported() && e.mayHold(sf.Type)
		}
	}
	e.holds[typ] = h
	return h
}

func encodeObject(e *encoder, d *Descriptor, v any, depth int) (any, error) {
	attrs, err := d.Attrs(v)
	if err != nil {
		emitEncodeComplete(e.ctx, d.className, len(d.names), err)
		return nil, err
	}

	fields := make([]Field, 0, len(attrs)+1)
	fields = append(fields, Field{Name: ClassKey, Value: d.className})
	for _, a := range attrs {
		av, _, err := e.walk(a.Value, depth+1)
		if err != nil {
			err = fmt.Errorf("%s.%s: %w", d.className, a.Name, err)
			emitEncodeComplete(e.ctx, d.className, len(d.names), err)
			return nil, err
		}
		fields = append(fields, Field{Name: a.Name, Value: av})
	}

	emitEncodeComplete(e.ctx, d.className, len(d.names), nil)
	return e.f.Object(fields), nil
}

// DecodeTree rebuilds odd values from documents carrying a ClassKey naming a
// registered class. Documents without one, or naming an unknown class, decode to
// map[string]any so the caller can fall back to generic handling.
func DecodeTree(ctx context.Context, t *Table, v any, f Format) (any, error) {
	if f.Normalize != nil {
		v = f.Normalize(v)
	}

	if fields, ok := f.Fields(v); ok {
		for i := range fields {
			fv, err := DecodeTree(ctx, t, fields[i].Value, f)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fields[i].Name, err)
			}
			fields[i].Value = fv
		}

		if class, ok := classOf(fields); ok {
			if _, known := t.ByName(class); known {
				return Build(ctx, t, class, fields)
			}
		}

		out := make(map[string]any, len(fields))
		for _, fl := range fields {
			out[fl.Name] = fl.Value
		}
		return out, nil
	}

	if seq, ok := v.([]any); ok {
		out := make([]any, len(seq))
		for i, e := range seq {
			ev, err := DecodeTree(ctx, t, e, f)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	}

	return v, nil
}

// classOf returns the string value of the class key, if any.
func classOf(fields []Field) (string, bool) {
	for _, fl := range fields {
		if fl.Name == ClassKey {
			s, ok := fl.Value.(string)
			return s, ok
		}
	}
	return "", false
}

// Build constructs an instance of the class named class from decoded fields.
// The class key and keys the descriptor does not list are skipped; attributes
// missing from fields reach the constructor as nil.
func Build(ctx context.Context, t *Table, class string, fields []Field) (obj any, err error) {
	start := time.Now()
	defer func() {
		emitBuildComplete(ctx, class, time.Since(start), err)
	}()

	d, ok := t.ByName(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}

	args := d.NewArgsContext(ctx)
	defer args.Release()

	for _, fl := range fields {
		if fl.Name == ClassKey {
			continue
		}
		args.Set(fl.Name, fl.Value)
	}
	return args.Construct()
}
