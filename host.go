package odd

import (
	"reflect"
)

// Constructor builds a value from attribute values in attribute order.
// Attributes absent from the decoded object arrive as nil.
type Constructor func(args []any) (any, error)

// Target is anything a construction operation can be invoked on.
// Both Class and Module implement it.
type Target interface {
	// Name returns the name the host knows the target by.
	Name() string

	// Constructor returns the operation registered under op.
	Constructor(op Symbol) (Constructor, bool)
}

// Module is a named construction target without a Go type of its own,
// such as the numeric module rationals are built from.
type Module struct {
	name string
	ops  map[Symbol]Constructor
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{name: name, ops: make(map[Symbol]Constructor)}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Define adds or replaces the operation op.
// Returns the module for chaining.
func (m *Module) Define(op string, fn Constructor) *Module {
	m.ops[Intern(op)] = fn
	return m
}

// Constructor returns the operation registered under op.
func (m *Module) Constructor(op Symbol) (Constructor, bool) {
	fn, ok := m.ops[op]
	return fn, ok
}

// Class is a module bound to a Go type. The type is the class handle:
// encoding looks descriptors up by the reflect.Type of the value being written.
type Class struct {
	Module
	typ reflect.Type
}

// NewClass returns a class named name for values of typ.
func NewClass(name string, typ reflect.Type) *Class {
	return &Class{
		Module: Module{name: name, ops: make(map[Symbol]Constructor)},
		typ:    typ,
	}
}

// ClassOf returns a class named name for values of type T. Struct types are
// scanned up front so their field metadata is cached.
func ClassOf[T any](name string) *Class {
	scanClass[T]()
	return NewClass(name, reflect.TypeFor[T]())
}

// Type returns the class handle.
func (c *Class) Type() reflect.Type { return c.typ }

// Define adds or replaces the operation op.
// Returns the class for chaining.
func (c *Class) Define(op string, fn Constructor) *Class {
	c.Module.Define(op, fn)
	return c
}

// Host is the set of classes and modules a table can resolve by name.
// It stands in for the host environment the built-in descriptors are bound against.
type Host struct {
	targets map[string]Target
}

// NewHost returns a host defining the given targets.
func NewHost(targets ...Target) *Host {
	h := &Host{targets: make(map[string]Target, len(targets))}
	for _, t := range targets {
		h.Define(t)
	}
	return h
}

// Define adds or replaces a target under its name.
// Returns the host for chaining.
func (h *Host) Define(t Target) *Host {
	h.targets[t.Name()] = t
	return h
}

// Target returns the target named name.
func (h *Host) Target(name string) (Target, bool) {
	t, ok := h.targets[name]
	return t, ok
}

// Class returns the class named name. Modules are not classes.
func (h *Host) Class(name string) (*Class, bool) {
	c, ok := h.targets[name].(*Class)
	return c, ok
}
