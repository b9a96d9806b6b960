// Package json provides a JSON codec for odd values.
//
// An odd value is written as an object whose first key is odd.ClassKey:
//
//	{"^O":"Rational","numerator":61,"denominator":2}
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"strings"

	"github.com/zoobzio/odd"
)

// jsonCodec implements odd.Codec for JSON.
type jsonCodec struct {
	table *odd.Table
}

// New returns a JSON codec resolving odd types through t.
func New(t *odd.Table) odd.Codec {
	return &jsonCodec{table: t}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	tree, err := odd.EncodeTree(context.Background(), c.table, v, format)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes JSON data into v, which must be *any or a pointer to the
// decoded value's type.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return odd.NewCodecError(odd.ErrUnmarshal, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("invalid character after top-level value")
		}
		return odd.NewCodecError(odd.ErrUnmarshal, err)
	}

	out, err := odd.DecodeTree(context.Background(), c.table, raw, format)
	if err != nil {
		return odd.NewCodecError(odd.ErrUnmarshal, err)
	}
	return odd.Assign(v, out)
}

var format = odd.Format{
	Object: func(fields []odd.Field) any {
		return object(fields)
	},
	Fields: func(v any) ([]odd.Field, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		fields := make([]odd.Field, 0, len(m))
		for k, e := range m {
			fields = append(fields, odd.Field{Name: k, Value: e})
		}
		return fields, true
	},
	Normalize: normalize,
}

// object is an odd document. It marshals with its keys in field order so the
// class key leads.
type object []odd.Field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalize turns json.Number into int64, *big.Int or float64.
func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if !strings.ContainsAny(string(n), ".eE") {
		if b, ok := new(big.Int).SetString(string(n), 10); ok {
			return b
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}
