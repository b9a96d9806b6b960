// Package yaml provides a YAML codec for odd values.
package yaml

import (
	"context"
	"fmt"

	"github.com/zoobzio/odd"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements odd.Codec for YAML.
type yamlCodec struct {
	table *odd.Table
}

// New returns a YAML codec resolving odd types through t.
func New(t *odd.Table) odd.Codec {
	return &yamlCodec{table: t}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	tree, err := odd.EncodeTree(context.Background(), c.table, v, format)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, odd.NewCodecError(odd.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes YAML data into v, which must be *any or a pointer to the
// decoded value's type.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
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

// object is an odd document. It marshals as a mapping with its keys in field
// order so the class key leads.
type object []odd.Field

func (o object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range o {
		var k, v yaml.Node
		if err := k.Encode(f.Name); err != nil {
			return nil, err
		}
		if err := v.Encode(f.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		node.Content = append(node.Content, &k, &v)
	}
	return node, nil
}
