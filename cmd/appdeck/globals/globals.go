package globals

import (
	"appdeck/internal/components/telemetry"
	"context"
)

type keyType int

const key keyType = 0

// Value is what every command receives from the root command.
type Value struct {
	ConfigPath string
	Verbose    bool
	DumpHttp   string
	Developer  string
	Telemetry  telemetry.API
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key).(*Value)
}
