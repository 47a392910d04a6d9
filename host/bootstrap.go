package host

import (
	"context"
	stdErrors "errors"

	"github.com/reglet-dev/wapc-host/domain/ports"
	"go.uber.org/zap"
)

// bootstrap runs the guest's start and init exports, in that order. Failures are
// logged and do not abort construction; an exit with code 0 counts as success.
func (e *Engine) bootstrap(ctx context.Context) {
	for _, name := range []string{ExportStart, ExportInit} {
		if !e.caps.Has(name) {
			continue
		}
		if _, err := e.instance.CallExport(ctx, name); err != nil {
			var exit ports.ExitCoder
			if stdErrors.As(err, &exit) && exit.ExitCode() == 0 {
				continue
			}
			e.logger.Warn("bootstrap function failed", zap.String("export", name), zap.Error(err))
			continue
		}
		e.logger.Debug("bootstrap function completed", zap.String("export", name))
	}
}
