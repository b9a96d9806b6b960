// Package msgpack provides a MessagePack codec for odd values.
package msgpack

import (
	"context"
	"fmt"
	"math/big"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/odd"
)

// msgpackCodec implements odd.Codec for MessagePack.
type msgpackCodec struct {
	table *odd.Table
}

// New returns a MessagePack codec resolving odd types through t.
func New(t *odd.Table) odd.Codec {
	return &msgpackCodec{table: t}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	tree, err := odd.EncodeTree(context.Background(), c.table, v, format)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	data, err := msgpack.Marshal(tree)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes MessagePack data into v, which must be *any or a pointer to
// the decoded value's type.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	var raw any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
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
		// MessagePack has no big integers; carry them as decimal strings.
		for i, f := range fields {
			if n, ok := f.Value.(*big.Int); ok {
				fields[i].Value = n.String()
			}
		}
		return object(fields)
	},
	Fields: func(v any) ([]odd.Field, bool) {
		switch m := v.(type) {
		case map[string]any:
			fields := make([]odd.Field, 0, len(m))
			for k, e := range m {
				fields = append(fields, odd.Field{Name: k, Value: e})
			}
			return fields, true
		case map[any]any:
			fields := make([]odd.Field, 0, len(m))
			for k, e := range m {
				fields = append(fields, odd.Field{Name: fmt.Sprint(k), Value: e})
			}
			return fields, true
		}
		return nil, false
	},
}

// object is an odd document. It encodes as a map with its keys in field order
// so the class key leads.
type object []odd.Field

var _ msgpack.CustomEncoder = object(nil)

func (o object) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(o)); err != nil {
		return err
	}
	for _, f := range o {
		if err := enc.EncodeString(f.Name); err != nil {
			return err
		}
		if err := enc.Encode(f.Value); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}
