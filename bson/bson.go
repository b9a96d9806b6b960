// Package bson provides a BSON codec for odd values.
//
// BSON documents must be maps at the top level, so Marshal accepts odd values,
// map[string]any and bson documents.
package bson

import (
	"context"
	"math/big"

	"github.com/zoobzio/odd"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements odd.Codec for BSON.
type bsonCodec struct {
	table *odd.Table
}

// New returns a BSON codec resolving odd types through t.
func New(t *odd.Table) odd.Codec {
	return &bsonCodec{table: t}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	tree, err := odd.EncodeTree(context.Background(), c.table, v, format)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	data, err := bson.Marshal(tree)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes BSON data into v, which must be *any or a pointer to the
// decoded value's type.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	var raw bson.D
	if err := bson.Unmarshal(data, &raw); err != nil {
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
		doc := make(bson.D, 0, len(fields))
		for _, f := range fields {
			v := f.Value
			// BSON has no big integers; carry them as decimal strings.
			if n, ok := v.(*big.Int); ok {
				v = n.String()
			}
			doc = append(doc, bson.E{Key: f.Name, Value: v})
		}
		return doc
	},
	Fields: func(v any) ([]odd.Field, bool) {
		switch m := v.(type) {
		case bson.D:
			fields := make([]odd.Field, 0, len(m))
			for _, e := range m {
				fields = append(fields, odd.Field{Name: e.Key, Value: e.Value})
			}
			return fields, true
		case bson.M:
			fields := make([]odd.Field, 0, len(m))
			for k, e := range m {
				fields = append(fields, odd.Field{Name: k, Value: e})
			}
			return fields, true
		case map[string]any:
			fields := make([]odd.Field, 0, len(m))
			for k, e := range m {
				fields = append(fields, odd.Field{Name: k, Value: e})
			}
			return fields, true
		}
		return nil, false
	},
	Normalize: func(v any) any {
		if a, ok := v.(bson.A); ok {
			return []any(a)
		}
		return v
	},
}
