// Command storefront is a terminal client for the storefront API.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		return newRootCmd(lg, m).ExecuteContext(ctx)
	})
}
