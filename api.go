// Package odd lets a codec marshal values of classes it has no built-in
// knowledge of ("odd" types).
//
// A Descriptor records, for one class, which attributes to read from an
// instance and which construction operation rebuilds an instance from them.
// Descriptors live in a Table, looked up by class identity when encoding and
// by class name when decoding.
//
// # Built-ins
//
// NewTable registers four descriptors resolved against a Host:
//
//	Rational  numerator, denominator                           Kernel.Rational
//	Date      year, month, day, start                          Date.new
//	DateTime  year, month, day, hour, min, sec, offset, start  DateTime.new
//	Range     begin, end, exclude_end?                         Range.new
//
// StdHost binds them to *big.Rat, Date, DateTime and Range.
//
// # Registration
//
// Hosts add their own classes at runtime:
//
//	point := odd.ClassOf[Point]("Point").Define("new", newPoint)
//	t.Register(point, point, "new", []any{"x", "y"})
//
// Attribute specs are names or interned Symbols. Attributes without a custom
// getter are read through a default accessor resolved once at registration:
// an AttrReader implementation, a field tagged `odd:"name"`, a zero-argument
// method, or a field named after the attribute (exclude_end? reads ExcludeEnd).
// WithGetter overrides one attribute with a derived value, as the built-in
// DateTime does for sec.
//
// # Decoding
//
// Keys of an odd object may arrive in any order. Args collects them by
// attribute position; keys the descriptor does not list are ignored:
//
//	d, ok := t.ByName(className)
//	args := d.NewArgs()
//	defer args.Release()
//	for k, v := range object {
//	    args.Set(k, v)
//	}
//	v, err := args.Construct()
//
// Build does the same for a decoded field list.
//
// # Codec Providers
//
// The following codec implementations are available as sub-packages; each
// writes odd values as documents whose first key is ClassKey:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Concurrency
//
// Lookups may run concurrently. Register serializes against lookups through the
// table lock. An Args belongs to one decode and must be released on every path.
package odd
