package odd

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMissingClass indicates a built-in class or target is absent from the host.
	ErrMissingClass = errors.New("missing class")

	// ErrNilClass indicates a registration without a class or construction target.
	ErrNilClass = errors.New("nil class")

	// ErrInvalidAttribute indicates an attribute spec that is neither a name nor a recognized symbol.
	ErrInvalidAttribute = errors.New("registered attribute identifiers must be names or symbols")

	// ErrDuplicateAttribute indicates the same attribute name was listed twice.
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrTooManyAttrs indicates more than MaxAttrs attributes were listed.
	ErrTooManyAttrs = errors.New("too many attributes")

	// ErrUnknownAttribute indicates a getter option names an attribute not in the list.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrUnknownOperation indicates the construction target does not define the operation.
	ErrUnknownOperation = errors.New("unknown construction operation")

	// ErrUnknownClass indicates no descriptor matches a class name.
	ErrUnknownClass = errors.New("unknown class")

	// ErrNoAccessor indicates an attribute cannot be read from the class.
	ErrNoAccessor = errors.New("no accessor")

	// ErrClassMismatch indicates a value of the wrong class was handed to a descriptor.
	ErrClassMismatch = errors.New("class mismatch")

	// ErrConstruct indicates a constructor rejected its arguments.
	ErrConstruct = errors.New("construct failed")

	// ErrReleased indicates use of an accumulator after Release.
	ErrReleased = errors.New("accumulator used after release")

	// ErrUnsupportedContainer indicates an odd value sits where the tree walker
	// cannot replace it, such as a struct field.
	ErrUnsupportedContainer = errors.New("odd value in unsupported container")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// RegistrationError represents a rejected registration.
// It wraps a sentinel error with the class and, when relevant, the offending attribute.
type RegistrationError struct {
	Err   error  // Underlying sentinel error (ErrInvalidAttribute, etc.)
	Class string // Class name being registered
	Attr  string // Attribute name or spec that triggered the error
	Index int    // Position of the attribute spec, -1 when not attribute-specific
}

func (e *RegistrationError) Error() string {
	switch {
	case e.Index >= 0 && e.Attr != "":
		return fmt.Sprintf("register %s: %s (attribute %d %q)", e.Class, e.Err.Error(), e.Index, e.Attr)
	case e.Index >= 0:
		return fmt.Sprintf("register %s: %s (attribute %d)", e.Class, e.Err.Error(), e.Index)
	case e.Attr != "":
		return fmt.Sprintf("register %s: %s (%q)", e.Class, e.Err.Error(), e.Attr)
	default:
		return fmt.Sprintf("register %s: %s", e.Class, e.Err.Error())
	}
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newRegistrationError creates a RegistrationError that is not tied to one attribute.
func newRegistrationError(sentinel error, class string) error {
	return &RegistrationError{
		Err:   sentinel,
		Class: class,
		Index: -1,
	}
}

// newAttrError creates a RegistrationError for the attribute spec at index.
func newAttrError(sentinel error, class string, index int, attr string) error {
	return &RegistrationError{
		Err:   sentinel,
		Class: class,
		Attr:  attr,
		Index: index,
	}
}

// NewCodecError creates a CodecError for marshal/unmarshal failures.
// Codec implementations in sub-packages use it to report wire failures.
func NewCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
