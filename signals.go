package odd

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for registry and codec events.
var (
	SignalTableInitialized     = capitan.NewSignal("odd.table.initialized", "Built-in descriptors registered")
	SignalDescriptorRegistered = capitan.NewSignal("odd.descriptor.registered", "Descriptor appended to a table")
	SignalDescriptorRejected   = capitan.NewSignal("odd.descriptor.rejected", "Registration refused")
	SignalArgIgnored           = capitan.NewSignal("odd.args.ignored", "Unrecognized attribute key skipped during decode")
	SignalBuildComplete        = capitan.NewSignal("odd.build.complete", "Odd object constructed from decoded attributes")
	SignalEncodeComplete       = capitan.NewSignal("odd.encode.complete", "Odd value expanded into attributes")
)

// Keys for typed event data.
var (
	KeyClassName   = capitan.NewStringKey("class_name")
	KeyAttr        = capitan.NewStringKey("attr")
	KeyIndex       = capitan.NewIntKey("index")
	KeyAttrCount   = capitan.NewIntKey("attr_count")
	KeyBuiltins    = capitan.NewIntKey("builtins")
	KeyFingerprint = capitan.NewStringKey("fingerprint")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitTableInitialized emits an event when a table's built-ins are in place.
func emitTableInitialized(ctx context.Context, builtins int, fingerprint string) {
	capitan.Emit(ctx, SignalTableInitialized,
		KeyBuiltins.Field(builtins),
		KeyFingerprint.Field(fingerprint),
	)
}

// emitDescriptorRegistered emits an event when a descriptor is appended.
func emitDescriptorRegistered(ctx context.Context, className string, index, attrCount int) {
	capitan.Emit(ctx, SignalDescriptorRegistered,
		KeyClassName.Field(className),
		KeyIndex.Field(index),
		KeyAttrCount.Field(attrCount),
	)
}

// emitDescriptorRejected emits an error event when a registration fails.
func emitDescriptorRejected(ctx context.Context, className string, err error) {
	capitan.Error(ctx, SignalDescriptorRejected,
		KeyClassName.Field(className),
		KeyError.Field(err),
	)
}

// emitArgIgnored emits an event when an accumulator skips an unknown key.
func emitArgIgnored(ctx context.Context, className, key string) {
	capitan.Emit(ctx, SignalArgIgnored,
		KeyClassName.Field(className),
		KeyAttr.Field(key),
	)
}

// emitBuildComplete emits an event when an odd object has been built or failed to build.
func emitBuildComplete(ctx context.Context, className string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyClassName.Field(className),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalBuildComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalBuildComplete, fields...)
	}
}

// emitEncodeComplete emits an event when an odd value has been expanded.
func emitEncodeComplete(ctx context.Context, className string, attrCount int, err error) {
	fields := []capitan.Field{
		KeyClassName.Field(className),
		KeyAttrCount.Field(attrCount),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}
