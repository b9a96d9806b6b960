package odd

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Fields can name the attribute they back: `odd:"exclude_end?"`
	sentinel.Tag(attrTag)
}

const attrTag = "odd"

var (
	errorType      = reflect.TypeFor[error]()
	attrReaderType = reflect.TypeFor[AttrReader]()
)

// Getter extracts one attribute value from an instance.
// Getters must be deterministic and must not mutate the instance.
type Getter func(obj any) (any, error)

// accessorPlan resolves the default accessors for one class type.
// Resolution happens once, at registration; reading an attribute later is an
// index lookup rather than a name lookup.
type accessorPlan struct {
	typ    reflect.Type
	fields []sentinel.FieldMetadata
	reader bool
}

// newAccessorPlan scans typ once for the fields and methods attributes may bind to.
func newAccessorPlan(typ reflect.Type) *accessorPlan {
	plan := &accessorPlan{
		typ:    typ,
		reader: typ.Implements(attrReaderType),
	}

	st := typ
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		plan.fields = scanClassType(st).Fields
	}
	return plan
}

// getter returns the default accessor for the attribute name.
func (p *accessorPlan) getter(name string, sym Symbol) Getter {
	if p.reader {
		return p.readerGetter(name, sym)
	}

	goName := exportedName(name)

	// Explicit tag wins over naming conventions.
	for _, f := range p.fields {
		if f.Tags[attrTag] == name {
			return p.fieldGetter(f.Index)
		}
	}

	if m, ok := p.typ.MethodByName(goName); ok && isAccessorMethod(m) {
		return p.methodGetter(m)
	}

	for _, f := range p.fields {
		if f.Name == goName {
			return p.fieldGetter(f.Index)
		}
	}

	return p.missingGetter(name)
}

func (p *accessorPlan) readerGetter(name string, sym Symbol) Getter {
	return func(obj any) (any, error) {
		if _, err := classValue(p.typ, obj); err != nil {
			return nil, err
		}
		v, ok := obj.(AttrReader).OddAttr(sym)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrNoAccessor, p.typ, name)
		}
		return v, nil
	}
}

func (p *accessorPlan) methodGetter(m reflect.Method) Getter {
	idx := m.Index
	withErr := m.Type.NumOut() == 2
	return func(obj any) (any, error) {
		rv, err := classValue(p.typ, obj)
		if err != nil {
			return nil, err
		}
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, nil
		}
		out := rv.Method(idx).Call(nil)
		if withErr && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

func (p *accessorPlan) fieldGetter(index []int) Getter {
	return func(obj any) (any, error) {
		rv, err := classValue(p.typ, obj)
		if err != nil {
			return nil, err
		}
		if rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return nil, nil
			}
			rv = rv.Elem()
		}
		return rv.FieldByIndex(index).Interface(), nil
	}
}

func (p *accessorPlan) missingGetter(name string) Getter {
	err := fmt.Errorf("%w: %s.%s", ErrNoAccessor, p.typ, name)
	return func(any) (any, error) {
		return nil, err
	}
}

// classValue checks obj against the class type.
func classValue(typ reflect.Type, obj any) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() || rv.Type() != typ {
		return reflect.Value{}, fmt.Errorf("%w: want %s, got %T", ErrClassMismatch, typ, obj)
	}
	return rv, nil
}

// isAccessorMethod accepts methods taking no arguments and returning a value,
// optionally followed by an error.
func isAccessorMethod(m reflect.Method) bool {
	// m.Type includes the receiver.
	if m.Type.NumIn() != 1 {
		return false
	}
	switch m.Type.NumOut() {
	case 1:
		return true
	case 2:
		return m.Type.Out(1) == errorType
	default:
		return false
	}
}

// exportedName maps an attribute name onto Go naming: exclude_end? -> ExcludeEnd.
func exportedName(name string) string {
	name = strings.TrimRight(name, "?!=")
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// scanClass caches field metadata for T when T is a struct or a pointer to one.
func scanClass[T any]() {
	typ := reflect.TypeFor[T]()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() == reflect.Struct {
		_, _ = sentinel.TryScan[T]()
	}
}

// scanClassType returns field metadata for a struct type. Types scanned through
// ClassOf come from the sentinel cache. The cache is keyed by bare type name, so
// an entry describing some other type of that name is ignored.
func scanClassType(rt reflect.Type) sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.Name()); ok && describes(spec, rt) {
		return spec
	}

	// Types built with NewClass were never scanned.
	spec := sentinel.Metadata{TypeName: rt.Name(), PackageName: rt.PkgPath()}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val := sf.Tag.Get(attrTag); val != "" {
			fm.Tags[attrTag] = val
		}
		spec.Fields = append(spec.Fields, fm)
	}
	return spec
}

// describes reports whether spec was scanned from rt.
func describes(spec sentinel.Metadata, rt reflect.Type) bool {
	if rt.Name() == "" || spec.PackageName != rt.PkgPath() {
		return false
	}
	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if exported != len(spec.Fields) {
		return false
	}
	for _, f := range spec.Fields {
		if len(f.Index) != 1 || f.Index[0] >= rt.NumField() {
			return false
		}
		sf := rt.Field(f.Index[0])
		if sf.Name != f.Name || sf.Type != f.ReflectType || sf.Tag.Get(attrTag) != f.Tags[attrTag] {
			return false
		}
	}
	return true
}
