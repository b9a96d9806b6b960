// Package testing provides test utilities for odd.
package testing

import (
	"fmt"
	"math/big"
	"reflect"
	"testing"

	"github.com/zoobzio/odd"
)

// Point is a host class with two integer attributes read from fields.
type Point struct {
	X int
	Y int
}

// Money is a host class whose amount is itself an odd value (a Rational).
type Money struct {
	Amount   *big.Rat
	Currency string `odd:"currency"`
}

// Label is a host class read through odd.AttrReader instead of reflection.
type Label struct {
	text string
}

// NewLabel returns a Label holding text.
func NewLabel(text string) Label { return Label{text: text} }

// Text returns the label text.
func (l Label) Text() string { return l.text }

var textSym = odd.Intern("text")

// OddAttr implements odd.AttrReader.
func (l Label) OddAttr(sym odd.Symbol) (any, bool) {
	if sym == textSym {
		return l.text, true
	}
	return nil, false
}

// TestHost returns the standard host extended with Point, Money and Label.
func TestHost() *odd.Host {
	return odd.StdHost().
		Define(odd.ClassOf[Point]("Point").Define("new", newPoint)).
		Define(odd.ClassOf[Money]("Money").Define("new", newMoney)).
		Define(odd.ClassOf[Label]("Label").Define("new", newLabel))
}

// TestTable returns a table holding the built-ins plus Point, Money and Label.
func TestTable(tb testing.TB) *odd.Table {
	tb.Helper()
	host := TestHost()
	t, err := odd.NewTable(host)
	if err != nil {
		tb.Fatalf("NewTable() error: %v", err)
	}

	regs := []struct {
		class string
		attrs []any
	}{
		{"Point", []any{"x", "y"}},
		{"Money", []any{"amount", "currency"}},
		{"Label", []any{textSym}},
	}
	for _, r := range regs {
		class, ok := host.Class(r.class)
		if !ok {
			tb.Fatalf("host has no class %s", r.class)
		}
		if _, err := t.Register(class, class, "new", r.attrs); err != nil {
			tb.Fatalf("Register(%s) error: %v", r.class, err)
		}
	}
	return t
}

func newPoint(args []any) (any, error) {
	x, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	y, err := asInt(args[1])
	if err != nil {
		return nil, err
	}
	return Point{X: x, Y: y}, nil
}

func newMoney(args []any) (any, error) {
	m := Money{}
	if args[0] != nil {
		r, ok := args[0].(*big.Rat)
		if !ok {
			return nil, fmt.Errorf("%w: amount must be Rational, got %T", odd.ErrConstruct, args[0])
		}
		m.Amount = r
	}
	m.Currency, _ = args[1].(string)
	return m, nil
}

func newLabel(args []any) (any, error) {
	s, _ := args[0].(string)
	return NewLabel(s), nil
}

// asInt accepts any integer kind a wire library may decode into. Absent is zero.
func asInt(v any) (int, error) {
	if v == nil {
		return 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	}
	return 0, fmt.Errorf("%w: %T is not an integer", odd.ErrConstruct, v)
}
