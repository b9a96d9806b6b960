package benchmarks

import (
	"context"
	"math/big"
	"testing"

	"github.com/zoobzio/odd"
	"github.com/zoobzio/odd/json"
	"github.com/zoobzio/odd/msgpack"
	oddtest "github.com/zoobzio/odd/testing"
)

func sampleDateTime() odd.DateTime {
	return odd.DateTime{Year: 2024, Month: 3, Day: 1, Hour: 12, Min: 5, Sec: 30,
		SecFraction: big.NewRat(1, 2), Offset: big.NewRat(1, 24), Start: odd.Italy}
}

func BenchmarkTable_ByName(b *testing.B) {
	tbl := oddtest.TestTable(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tbl.ByName(odd.ClassDateTime)
	}
}

func BenchmarkTable_ByNameBytes(b *testing.B) {
	tbl := oddtest.TestTable(b)
	name := []byte(`"DateTime"`)[1:9]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tbl.ByNameBytes(name)
	}
}

func BenchmarkTable_ByValue(b *testing.B) {
	tbl := oddtest.TestTable(b)
	v := oddtest.Point{X: 1, Y: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tbl.ByValue(v)
	}
}

func BenchmarkArgs_SetConstruct(b *testing.B) {
	tbl := oddtest.TestTable(b)
	d, _ := tbl.ByName(odd.ClassDateTime)
	keys := d.AttrNames()
	vals := []any{2024, 3, 1, 12, 5, big.NewRat(61, 2), big.NewRat(1, 24), float64(odd.Italy)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		args := d.NewArgs()
		for j := len(keys) - 1; j >= 0; j-- {
			args.Set(keys[j], vals[j])
		}
		_, _ = args.Construct()
		args.Release()
	}
}

func BenchmarkDescriptor_Attrs(b *testing.B) {
	tbl := oddtest.TestTable(b)
	dt := sampleDateTime()
	d, _ := tbl.ByValue(dt)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Attrs(dt)
	}
}

func BenchmarkBuild(b *testing.B) {
	tbl := oddtest.TestTable(b)
	fields := []odd.Field{
		{Name: odd.ClassKey, Value: "Point"},
		{Name: "y", Value: int64(2)},
		{Name: "x", Value: int64(1)},
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = odd.Build(ctx, tbl, "Point", fields)
	}
}

func BenchmarkJSON_Marshal(b *testing.B) {
	c := json.New(oddtest.TestTable(b))
	v := sampleDateTime()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Marshal(v)
	}
}

func BenchmarkJSON_Unmarshal(b *testing.B) {
	c := json.New(oddtest.TestTable(b))
	data, err := c.Marshal(sampleDateTime())
	if err != nil {
		b.Fatalf("Marshal() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v any
		_ = c.Unmarshal(data, &v)
	}
}

func BenchmarkMsgpack_RoundTrip(b *testing.B) {
	c := msgpack.New(oddtest.TestTable(b))
	v := oddtest.Money{Amount: big.NewRat(1999, 100), Currency: "USD"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, _ := c.Marshal(v)
		var out any
		_ = c.Unmarshal(data, &out)
	}
}
