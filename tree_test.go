package odd

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"
)

// doc is an ordered document for exercising the tree walkers without a wire library.
type doc []Field

var docFormat = Format{
	Object: func(fields []Field) any { return doc(fields) },
	Fields: func(v any) ([]Field, bool) {
		d, ok := v.(doc)
		if !ok {
			return nil, false
		}
		return append([]Field(nil), d...), true
	},
}

func TestEncodeTree_Rational(t *testing.T) {
	tbl := newTestTable(t)

	got, err := EncodeTree(context.Background(), tbl, big.NewRat(61, 2), docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	want := doc{
		{ClassKey, ClassRational},
		{"numerator", int64(61)},
		{"denominator", int64(2)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EncodeTree() = %#v, want %#v", got, want)
	}
}

func TestEncodeTree_NestedRational(t *testing.T) {
	tbl := newTestTable(t)
	dt := DateTime{Year: 2024, Month: 3, Day: 1, Sec: 30,
		SecFraction: big.NewRat(1, 2), Offset: big.NewRat(1, 24), Start: Italy}

	got, err := EncodeTree(context.Background(), tbl, dt, docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	d := got.(doc)
	if d[0] != (Field{ClassKey, ClassDateTime}) {
		t.Errorf("first field = %v, want class key", d[0])
	}

	sec := d[6]
	if sec.Name != "sec" {
		t.Fatalf("field 6 = %q, want sec", sec.Name)
	}
	wantSec := doc{{ClassKey, ClassRational}, {"numerator", int64(61)}, {"denominator", int64(2)}}
	if !reflect.DeepEqual(sec.Value, wantSec) {
		t.Errorf("sec = %#v, want %#v", sec.Value, wantSec)
	}
}

func TestEncodeTree_Containers(t *testing.T) {
	tbl := newTestTable(t)
	in := map[string]any{
		"list":  []any{big.NewRat(1, 3), "x"},
		"plain": 7,
		"none":  nil,
	}

	got, err := EncodeTree(context.Background(), tbl, in, docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	m := got.(map[string]any)
	list := m["list"].([]any)
	if _, ok := list[0].(doc); !ok {
		t.Errorf("list[0] = %T, want encoded rational", list[0])
	}
	if list[1] != "x" || m["plain"] != 7 || m["none"] != nil {
		t.Errorf("non-odd values changed: %v", m)
	}
}

func TestEncodeTree_NilPointer(t *testing.T) {
	tbl := newTestTable(t)

	got, err := EncodeTree(context.Background(), tbl, (*big.Rat)(nil), docFormat)
	if err != nil || got != nil {
		t.Errorf("EncodeTree(nil *big.Rat) = %v, %v; want nil, nil", got, err)
	}
}

func TestEncodeTree_TypedContainers(t *testing.T) {
	tbl := newTestTable(t)
	ctx := context.Background()
	d := Date{Year: 2024, Month: 1, Day: 2, Start: Italy}

	tests := []struct {
		name string
		in   any
		len  int
	}{
		{"rational slice", []*big.Rat{big.NewRat(1, 3), nil}, 2},
		{"date slice", []Date{d}, 1},
		{"date array", [2]Date{d, d}, 2},
		{"pointer to slice", &[]Date{d}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeTree(ctx, tbl, tt.in, docFormat)
			if err != nil {
				t.Fatalf("EncodeTree() error: %v", err)
			}
			seq, ok := got.([]any)
			if !ok || len(seq) != tt.len {
				t.Fatalf("EncodeTree() = %#v, want []any of %d", got, tt.len)
			}
			if _, ok := seq[0].(doc); !ok {
				t.Errorf("[0] = %T, want encoded document", seq[0])
			}
		})
	}
}

func TestEncodeTree_TypedMap(t *testing.T) {
	tbl := newTestTable(t)

	got, err := EncodeTree(context.Background(), tbl, map[string]Date{"d": {Year: 2000, Month: 1, Day: 1}}, docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("EncodeTree() = %T, want map[string]any", got)
	}
	if _, ok := m["d"].(doc); !ok {
		t.Errorf("d = %T, want encoded document", m["d"])
	}

	_, err = EncodeTree(context.Background(), tbl, map[int]Date{1: {Year: 2000}}, docFormat)
	if !errors.Is(err, ErrUnsupportedContainer) {
		t.Errorf("int-keyed map error = %v, want ErrUnsupportedContainer", err)
	}
}

func TestEncodeTree_TypedContainersWithoutOddValues(t *testing.T) {
	tbl := newTestTable(t)
	ints := []int{1, 2}
	raw := []byte("raw")
	anys := map[string][]any{"k": {"x"}}

	for _, in := range []any{ints, raw, anys, [1]any{nil}} {
		got, err := EncodeTree(context.Background(), tbl, in, docFormat)
		if err != nil {
			t.Fatalf("EncodeTree(%T) error: %v", in, err)
		}
		if reflect.TypeOf(got) != reflect.TypeOf(in) {
			t.Errorf("EncodeTree(%T) = %T, want the value unchanged", in, got)
		}
	}
}

func TestEncodeTree_StructField(t *testing.T) {
	tbl := newTestTable(t)

	type event struct {
		Name string
		When Date
	}
	_, err := EncodeTree(context.Background(), tbl, event{Name: "launch", When: Date{Year: 1969}}, docFormat)
	if !errors.Is(err, ErrUnsupportedContainer) {
		t.Errorf("EncodeTree() error = %v, want ErrUnsupportedContainer", err)
	}

	type note struct {
		Text  string
		Extra any
		When  *Date
	}
	in := note{Text: "plain", Extra: 3}
	got, err := EncodeTree(context.Background(), tbl, in, docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	if got != in {
		t.Errorf("EncodeTree() = %#v, want struct unchanged", got)
	}
}

func TestEncodeTree_AccessorError(t *testing.T) {
	tbl := newTestTable(t)
	class := pointClass("Point")
	if _, err := tbl.Register(class, class, "new", []any{"x", "z"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	_, err := EncodeTree(context.Background(), tbl, point{X: 1}, docFormat)
	if !errors.Is(err, ErrNoAccessor) {
		t.Errorf("EncodeTree() error = %v, want ErrNoAccessor", err)
	}
}

func TestEncodeTree_NewestWins(t *testing.T) {
	tbl := newTestTable(t)
	for _, name := range []string{"PointV1", "PointV2"} {
		class := pointClass(name)
		if _, err := tbl.Register(class, class, "new", []any{"x", "y"}); err != nil {
			t.Fatalf("Register(%s) error: %v", name, err)
		}
	}

	got, err := EncodeTree(context.Background(), tbl, point{1, 2}, docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	if got.(doc)[0].Value != "PointV2" {
		t.Errorf("class = %v, want PointV2", got.(doc)[0].Value)
	}
}

func TestDecodeTree_RoundTrip(t *testing.T) {
	tbl := newTestTable(t)
	ctx := context.Background()

	values := []any{
		big.NewRat(-7, 3),
		Date{Year: 2024, Month: 2, Day: 29, Start: Italy},
		DateTime{Year: 2024, Month: 3, Day: 1, Hour: 12, Min: 5, Sec: 30,
			SecFraction: big.NewRat(1, 2), Offset: big.NewRat(1, 24), Start: Italy},
		Range{Begin: []any{int64(1), "a"}, End: big.NewRat(5, 1), ExcludeEnd: true},
	}

	for _, v := range values {
		t.Run(reflect.TypeOf(v).String(), func(t *testing.T) {
			enc, err := EncodeTree(ctx, tbl, v, docFormat)
			if err != nil {
				t.Fatalf("EncodeTree() error: %v", err)
			}
			got, err := DecodeTree(ctx, tbl, enc, docFormat)
			if err != nil {
				t.Fatalf("DecodeTree() error: %v", err)
			}

			switch want := v.(type) {
			case *big.Rat:
				if got.(*big.Rat).Cmp(want) != 0 {
					t.Errorf("got %v, want %v", got, want)
				}
			case DateTime:
				if !got.(DateTime).Equal(want) {
					t.Errorf("got %+v, want %+v", got, want)
				}
			case Range:
				r := got.(Range)
				if !reflect.DeepEqual(r.Begin, want.Begin) || !r.ExcludeEnd {
					t.Errorf("got %+v, want %+v", r, want)
				}
				if r.End.(*big.Rat).Cmp(want.End.(*big.Rat)) != 0 {
					t.Errorf("End = %v, want %v", r.End, want.End)
				}
			default:
				if got != want {
					t.Errorf("got %+v, want %+v", got, want)
				}
			}
		})
	}
}

func TestDecodeTree_UnknownClass(t *testing.T) {
	tbl := newTestTable(t)
	in := doc{{ClassKey, "Nope"}, {"a", 1}}

	got, err := DecodeTree(context.Background(), tbl, in, docFormat)
	if err != nil {
		t.Fatalf("DecodeTree() error: %v", err)
	}
	want := map[string]any{ClassKey: "Nope", "a": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeTree() = %#v, want %#v", got, want)
	}
}

func TestDecodeTree_PlainDocument(t *testing.T) {
	tbl := newTestTable(t)
	in := []any{doc{{"a", doc{{ClassKey, ClassRational}, {"numerator", 1}, {"denominator", 4}}}}}

	got, err := DecodeTree(context.Background(), tbl, in, docFormat)
	if err != nil {
		t.Fatalf("DecodeTree() error: %v", err)
	}
	m := got.([]any)[0].(map[string]any)
	if r, ok := m["a"].(*big.Rat); !ok || r.Cmp(big.NewRat(1, 4)) != 0 {
		t.Errorf("a = %v, want 1/4", m["a"])
	}
}

func TestDecodeTree_Normalize(t *testing.T) {
	tbl := newTestTable(t)
	f := docFormat
	f.Normalize = func(v any) any {
		if s, ok := v.(string); ok && s == "two" {
			return 2
		}
		return v
	}

	in := doc{{ClassKey, ClassRational}, {"numerator", 1}, {"denominator", "two"}}
	got, err := DecodeTree(context.Background(), tbl, in, f)
	if err != nil {
		t.Fatalf("DecodeTree() error: %v", err)
	}
	if got.(*big.Rat).Cmp(big.NewRat(1, 2)) != 0 {
		t.Errorf("got %v, want 1/2", got)
	}
}

func TestDecodeTree_ConstructError(t *testing.T) {
	tbl := newTestTable(t)
	in := []any{doc{{ClassKey, ClassRational}, {"numerator", 1}, {"denominator", 0}}}

	_, err := DecodeTree(context.Background(), tbl, in, docFormat)
	if !errors.Is(err, ErrConstruct) {
		t.Errorf("DecodeTree() error = %v, want ErrConstruct", err)
	}
}

func TestBuild(t *testing.T) {
	tbl := newTestTable(t)
	fields := []Field{
		{"day", 9},
		{ClassKey, ClassDate},
		{"color", "blue"},
		{"year", 1999},
	}

	got, err := Build(context.Background(), tbl, ClassDate, fields)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := Date{Year: 1999, Month: 1, Day: 9, Start: Italy}
	if got != want {
		t.Errorf("Build() = %+v, want %+v", got, want)
	}
}

func TestBuild_UnknownClass(t *testing.T) {
	tbl := newTestTable(t)

	_, err := Build(context.Background(), tbl, "Date ", nil)
	if !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Build() error = %v, want ErrUnknownClass", err)
	}
}

func TestBuild_HostClass(t *testing.T) {
	tbl := newTestTable(t)
	class := pointClass("Point")
	if _, err := tbl.Register(class, class, "new", []any{Intern("x"), "y"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	got, err := Build(context.Background(), tbl, "Point", []Field{{"y", 2}, {"x", 1}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got != (point{X: 1, Y: 2}) {
		t.Errorf("Build() = %+v, want {1 2}", got)
	}
}

type node struct {
	Children []node
	Items    []*big.Rat
}

func TestEncodeTree_RecursiveType(t *testing.T) {
	tbl := newTestTable(t)
	in := []node{{Children: []node{{Items: []*big.Rat{big.NewRat(1, 2)}}}}}

	_, err := EncodeTree(context.Background(), tbl, in, docFormat)
	if !errors.Is(err, ErrUnsupportedContainer) {
		t.Errorf("EncodeTree() error = %v, want ErrUnsupportedContainer for the nested struct field", err)
	}

	plain := []node{{Children: []node{{}}}}
	got, err := EncodeTree(context.Background(), tbl, plain, docFormat)
	if err != nil {
		t.Fatalf("EncodeTree() error: %v", err)
	}
	if _, ok := got.([]node); !ok {
		t.Errorf("EncodeTree() = %T, want []node unchanged", got)
	}
}
