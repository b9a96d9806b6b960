package odd

// Override interfaces allow types to bypass reflection-based attribute access.
// When a class's type implements one of these interfaces, the descriptor calls the
// interface method instead of the field or method resolved at registration.
//
// These interfaces are designed for codegen: a generator can emit a switch over
// the attribute symbols a class registers.

// AttrReader bypasses reflection when reading attributes for encoding.
type AttrReader interface {
	// OddAttr returns the value of the attribute named by sym.
	// It reports false when the receiver has no such attribute.
	// It must not mutate the receiver.
	OddAttr(sym Symbol) (any, bool)
}
