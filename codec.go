package odd

import (
	"fmt"
	"reflect"
)

// Codec provides content-type aware marshaling.
// The codecs in the sub-packages marshal odd values through a Table.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// Assign stores decoded into the value dst points to. dst must be a non-nil
// pointer whose element type decoded is assignable to, such as *any or *Date.
func Assign(dst any, decoded any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return NewCodecError(ErrUnmarshal, fmt.Errorf("need non-nil pointer, got %T", dst))
	}
	elem := rv.Elem()
	if decoded == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	dv := reflect.ValueOf(decoded)
	if !dv.Type().AssignableTo(elem.Type()) {
		return NewCodecError(ErrUnmarshal, fmt.Errorf("cannot assign %s to %s", dv.Type(), elem.Type()))
	}
	elem.Set(dv)
	return nil
}
