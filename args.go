package odd

import (
	"context"
	"fmt"
	"sync"
)

// Args collects attribute values for one decode while the keys of an odd object
// stream in, in whatever order the input holds them.
//
// An Args belongs to the decode that created it. Call Release exactly once on every
// exit path; any use after Release panics.
type Args struct {
	ctx     context.Context
	desc    *Descriptor
	values  *[]any
	present uint16
}

var argsPool = sync.Pool{
	New: func() any {
		s := make([]any, 0, MaxAttrs)
		return &s
	},
}

// NewArgs returns an accumulator with every attribute absent.
func (d *Descriptor) NewArgs() *Args {
	return d.NewArgsContext(context.Background())
}

// NewArgsContext is NewArgs for a decode running under ctx. Events the
// accumulator emits carry ctx.
func (d *Descriptor) NewArgsContext(ctx context.Context) *Args {
	vp := argsPool.Get().(*[]any)
	vals := (*vp)[:len(d.names)]
	clear(vals)
	*vp = vals
	return &Args{ctx: ctx, desc: d, values: vp}
}

// Descriptor returns the descriptor the accumulator is bound to.
func (a *Args) Descriptor() *Descriptor {
	a.check()
	return a.desc
}

// Set stores value under the attribute named key and reports whether one matched.
// Keys the descriptor does not list are ignored so that objects written by a newer
// or older schema still decode.
func (a *Args) Set(key string, value any) bool {
	a.check()
	i := a.desc.attrIndex(key)
	if i < 0 {
		emitArgIgnored(a.ctx, a.desc.className, key)
		return false
	}
	a.store(i, value)
	return true
}

// SetBytes is Set for a key still in the input buffer.
func (a *Args) SetBytes(key []byte, value any) bool {
	a.check()
	i := a.desc.attrIndexBytes(key)
	if i < 0 {
		emitArgIgnored(a.ctx, a.desc.className, string(key))
		return false
	}
	a.store(i, value)
	return true
}

func (a *Args) store(i int, value any) {
	(*a.values)[i] = value
	a.present |= 1 << i
}

// Has reports whether attribute i has been set.
func (a *Args) Has(i int) bool {
	a.check()
	return i >= 0 && i < len(*a.values) && a.present&(1<<i) != 0
}

// Missing returns the names of the attributes not yet set.
func (a *Args) Missing() []string {
	a.check()
	var missing []string
	for i, name := range a.desc.names {
		if a.present&(1<<i) == 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Values returns a copy of the accumulated values in attribute order.
// Absent attributes are nil.
func (a *Args) Values() []any {
	a.check()
	return append([]any(nil), *a.values...)
}

// Construct builds the instance from the accumulated values.
// Completeness is not checked: absent attributes reach the constructor as nil.
func (a *Args) Construct() (any, error) {
	return a.desc.Construct(a.Values())
}

// Release returns the accumulator's storage. The accumulator must not be used again.
func (a *Args) Release() {
	a.check()
	vp := a.values
	clear(*vp)
	*vp = (*vp)[:0]
	a.values = nil
	a.desc = nil
	a.ctx = nil
	a.present = 0
	argsPool.Put(vp)
}

func (a *Args) check() {
	if a.values == nil {
		panic(fmt.Errorf("odd: %w", ErrReleased))
	}
}
