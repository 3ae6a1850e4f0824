package tome

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for tome events.
var (
	SignalLoadComplete           = capitan.NewSignal("tome.load.complete", "Document loaded into a map")
	SignalDumpComplete           = capitan.NewSignal("tome.dump.complete", "Map dumped as a document")
	SignalResolveAttempt         = capitan.NewSignal("tome.resolve.attempt", "Candidate codec tried against a source")
	SignalResolveComplete        = capitan.NewSignal("tome.resolve.complete", "Format resolution finished")
	SignalOpaqueFallback         = capitan.NewSignal("tome.opaque.fallback", "Opaque value written as plain text")
	SignalConfigurationSaved     = capitan.NewSignal("tome.configuration.saved", "Configuration written to disk")
	SignalConfigurationUnchanged = capitan.NewSignal("tome.configuration.unchanged", "Configuration write skipped, bytes unchanged")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyPath        = capitan.NewStringKey("path")
	KeyEntry       = capitan.NewStringKey("entry")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeySize        = capitan.NewIntKey("size")
	KeyTried       = capitan.NewIntKey("tried")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitLoadComplete emits an event when a configuration finishes loading.
func emitLoadComplete(ctx context.Context, contentType string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalLoadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalLoadComplete, fields...)
	}
}

// emitDumpComplete emits an event when a configuration finishes dumping.
func emitDumpComplete(ctx context.Context, contentType string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDumpComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDumpComplete, fields...)
	}
}

// emitResolveAttempt emits an event for every candidate codec tried.
func emitResolveAttempt(ctx context.Context, contentType string, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
	}
	capitan.Emit(ctx, SignalResolveAttempt, fields...)
}

// emitResolveComplete emits an event when resolution succeeds or gives up.
func emitResolveComplete(ctx context.Context, contentType string, tried int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTried.Field(tried),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalResolveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalResolveComplete, fields...)
	}
}

// EmitOpaqueFallback reports that a value under key could not be opaque-encoded
// and was written in its plain text form instead. Codecs call it from Dump.
func EmitOpaqueFallback(ctx context.Context, key, typeName string, err error) {
	capitan.Error(ctx, SignalOpaqueFallback,
		KeyEntry.Field(key),
		KeyTypeName.Field(typeName),
		KeyError.Field(err),
	)
}

// emitSaved emits an event when a configuration is written.
func emitSaved(ctx context.Context, path string, size int, changed bool) {
	signal := SignalConfigurationSaved
	if !changed {
		signal = SignalConfigurationUnchanged
	}
	capitan.Emit(ctx, signal,
		KeyPath.Field(path),
		KeySize.Field(size),
	)
}
