package odd

import (
	"fmt"
	"reflect"
)

// MaxAttrs is the most attributes one descriptor can carry.
const MaxAttrs = 10

// Field is one attribute name/value pair.
type Field struct {
	Name  string
	Value any
}

// Descriptor is the marshaling contract for one odd class: which attributes
// to read from an instance and how to build an instance back from them.
//
// Descriptors are immutable once registered and safe to share.
type Descriptor struct {
	index int

	className string
	class     *Class

	// names, ids, getters and access are parallel and always the same length.
	names   []string
	ids     []Symbol
	getters []Getter // custom getters, nil when the default accessor applies
	access  []Getter // resolved default accessors

	target Target
	op     Symbol
	create Constructor
}

// Index returns the descriptor's stable position in its table.
func (d *Descriptor) Index() int { return d.index }

// ClassName returns the class name used for name lookup.
func (d *Descriptor) ClassName() string { return d.className }

// Class returns the described class.
func (d *Descriptor) Class() *Class { return d.class }

// Type returns the class handle used for identity lookup.
func (d *Descriptor) Type() reflect.Type { return d.class.Type() }

// AttrCount returns the number of attributes.
func (d *Descriptor) AttrCount() int { return len(d.names) }

// AttrNames returns the attribute names in order.
func (d *Descriptor) AttrNames() []string {
	return append([]string(nil), d.names...)
}

// AttrIDs returns the interned attribute names in order.
func (d *Descriptor) AttrIDs() []Symbol {
	return append([]Symbol(nil), d.ids...)
}

// HasGetter reports whether attribute i uses a custom getter.
func (d *Descriptor) HasGetter(i int) bool {
	return i >= 0 && i < len(d.getters) && d.getters[i] != nil
}

// Target returns the target the construction operation is invoked on.
func (d *Descriptor) Target() Target { return d.target }

// Op returns the construction operation.
func (d *Descriptor) Op() Symbol { return d.op }

// Value reads attribute i from obj.
func (d *Descriptor) Value(obj any, i int) (any, error) {
	if i < 0 || i >= len(d.names) {
		return nil, fmt.Errorf("%w: %s has no attribute %d", ErrUnknownAttribute, d.className, i)
	}
	if g := d.getters[i]; g != nil {
		if _, err := classValue(d.class.Type(), obj); err != nil {
			return nil, err
		}
		return g(obj)
	}
	return d.access[i](obj)
}

// Attrs returns the name/value pairs to write for obj, in attribute order.
func (d *Descriptor) Attrs(obj any) ([]Field, error) {
	fields := make([]Field, len(d.names))
	for i, name := range d.names {
		v, err := d.Value(obj, i)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.className, name, err)
		}
		fields[i] = Field{Name: name, Value: v}
	}
	return fields, nil
}

// Construct invokes the construction operation with args in attribute order.
func (d *Descriptor) Construct(args []any) (any, error) {
	v, err := d.create(args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s(%s): %w", d.target.Name(), d.op, d.className, err)
	}
	return v, nil
}

// attrIndex returns the position of the attribute named key, or -1.
func (d *Descriptor) attrIndex(key string) int {
	for i, name := range d.names {
		if name == key {
			return i
		}
	}
	return -1
}

// attrIndexBytes is attrIndex for a raw key; the conversion does not allocate.
func (d *Descriptor) attrIndexBytes(key []byte) int {
	for i, name := range d.names {
		if string(key) == name {
			return i
		}
	}
	return -1
}
