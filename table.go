package odd

import (
	"context"
	"reflect"
	"sync"
)

// Table is an ordered collection of descriptors.
//
// Built-in descriptors occupy the prefix inserted by NewTable; Register appends.
// Lookups scan from the newest entry to the oldest, so a later registration shadows
// an earlier one for the same class or name.
//
// Lookups may run concurrently with each other. Register takes the table-wide write
// lock, so it is serialized against lookups and other registrations.
type Table struct {
	mu       sync.RWMutex
	descs    []*Descriptor
	builtins int
}

// RegisterOption configures a registration.
type RegisterOption func(*registration)

type registration struct {
	getters map[string]Getter
}

// WithGetter overrides the default accessor of the attribute named name.
func WithGetter(name string, g Getter) RegisterOption {
	return func(r *registration) {
		if r.getters == nil {
			r.getters = make(map[string]Getter)
		}
		r.getters[name] = g
	}
}

// NewTable returns a table holding the built-in descriptors, resolved against host.
// It fails with ErrMissingClass when host lacks a built-in class or target; a
// process cannot encode odd types without them.
func NewTable(host *Host) (*Table, error) {
	t := &Table{}
	if err := t.registerBuiltins(host); err != nil {
		return nil, err
	}
	t.builtins = len(t.descs)
	emitTableInitialized(context.Background(), t.builtins, t.Fingerprint())
	return t, nil
}

// Len returns the number of descriptors.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.descs)
}

// Builtins returns the number of built-in descriptors at the head of the table.
func (t *Table) Builtins() int {
	return t.builtins
}

// At returns the descriptor at index i.
func (t *Table) At(i int) (*Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.descs) {
		return nil, false
	}
	return t.descs[i], true
}

// Descriptors returns a snapshot of the table in registration order.
func (t *Table) Descriptors() []*Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Descriptor(nil), t.descs...)
}

// ByClass returns the newest descriptor whose class handle is typ.
func (t *Table) ByClass(typ reflect.Type) (*Descriptor, bool) {
	if typ == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.descs) - 1; i >= 0; i-- {
		if t.descs[i].class.Type() == typ {
			return t.descs[i], true
		}
	}
	return nil, false
}

// ByValue returns the newest descriptor for the class of v.
func (t *Table) ByValue(v any) (*Descriptor, bool) {
	return t.ByClass(reflect.TypeOf(v))
}

// ByName returns the newest descriptor whose class name equals name exactly.
// A stored name that is a prefix or extension of name never matches.
func (t *Table) ByName(name string) (*Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.descs) - 1; i >= 0; i-- {
		if t.descs[i].className == name {
			return t.descs[i], true
		}
	}
	return nil, false
}

// ByNameBytes is ByName for a name still in the input buffer.
// Only len(name) bytes are read.
func (t *Table) ByNameBytes(name []byte) (*Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.descs) - 1; i >= 0; i-- {
		if string(name) == t.descs[i].className {
			return t.descs[i], true
		}
	}
	return nil, false
}

// Register appends a descriptor for class.
//
// Each attribute spec must be a string or a Symbol issued by Intern; anything
// else fails with ErrInvalidAttribute. The construction operation op is invoked
// on target with the decoded attribute values in the order given here.
//
// On error the table is left unchanged.
func (t *Table) Register(class *Class, target Target, op string, attrs []any, opts ...RegisterOption) (*Descriptor, error) {
	d, err := buildDescriptor(class, target, op, attrs, opts)
	if err != nil {
		name := ""
		if class != nil {
			name = class.Name()
		}
		emitDescriptorRejected(context.Background(), name, err)
		return nil, err
	}

	t.mu.Lock()
	d.index = len(t.descs)
	t.descs = append(t.descs, d)
	t.mu.Unlock()

	emitDescriptorRegistered(context.Background(), d.className, d.index, len(d.names))
	return d, nil
}

// buildDescriptor validates a registration and resolves its accessors without
// touching any table, so a failure never leaves a partial entry behind.
func buildDescriptor(class *Class, target Target, op string, attrs []any, opts []RegisterOption) (*Descriptor, error) {
	if class == nil || class.Type() == nil {
		return nil, newRegistrationError(ErrNilClass, "")
	}
	if target == nil {
		return nil, newRegistrationError(ErrNilClass, class.Name())
	}
	if len(attrs) > MaxAttrs {
		return nil, newRegistrationError(ErrTooManyAttrs, class.Name())
	}

	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	opSym := Intern(op)
	create, ok := target.Constructor(opSym)
	if !ok {
		return nil, newAttrError(ErrUnknownOperation, class.Name(), -1, op)
	}

	d := &Descriptor{
		className: class.Name(),
		class:     class,
		names:     make([]string, 0, len(attrs)),
		ids:       make([]Symbol, 0, len(attrs)),
		getters:   make([]Getter, 0, len(attrs)),
		access:    make([]Getter, 0, len(attrs)),
		target:    target,
		op:        opSym,
		create:    create,
	}

	plan := newAccessorPlan(class.Type())
	for i, spec := range attrs {
		var name string
		var sym Symbol
		switch a := spec.(type) {
		case string:
			name = a
			sym = Intern(a)
		case Symbol:
			if !a.Valid() {
				return nil, newAttrError(ErrInvalidAttribute, class.Name(), i, "")
			}
			name = a.String()
			sym = a
		default:
			return nil, newAttrError(ErrInvalidAttribute, class.Name(), i, "")
		}
		if name == "" {
			return nil, newAttrError(ErrInvalidAttribute, class.Name(), i, "")
		}
		if d.attrIndex(name) >= 0 {
			return nil, newAttrError(ErrDuplicateAttribute, class.Name(), i, name)
		}

		d.names = append(d.names, name)
		d.ids = append(d.ids, sym)
		d.getters = append(d.getters, reg.getters[name])
		d.access = append(d.access, plan.getter(name, sym))
	}

	for name := range reg.getters {
		if d.attrIndex(name) < 0 {
			return nil, newAttrError(ErrUnknownAttribute, class.Name(), -1, name)
		}
	}

	return d, nil
}
