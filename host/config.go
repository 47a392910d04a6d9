package host

import (
	stdErrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/wapc-host/domain/errors"
	"github.com/reglet-dev/wapc-host/domain/ports"
	"github.com/reglet-dev/wapc-host/hostfuncs"
)

// DefaultStackSize is the default call stack budget (120 KiB).
const DefaultStackSize = 120 * 1024

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// Config holds the resource limits of an Engine.
type Config struct {
	// StackSize is the call stack budget in bytes. Runtimes that manage their
	// own stack treat it as advisory.
	StackSize uint32 `validate:"gte=4096"`

	// MemoryLimitPages caps guest memory growth in 64 KiB pages. Zero keeps the runtime default.
	MemoryLimitPages uint32 `validate:"lte=65536"`

	// MaxHostCallSize is the largest payload the guest may pass to a host call.
	MaxHostCallSize uint32 `validate:"gt=0"`

	// CloseOnContextDone aborts a running guest call when its context is done.
	CloseOnContextDone bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		StackSize:       DefaultStackSize,
		MaxHostCallSize: hostfuncs.DefaultMaxPayloadSize,
	}
}

// Validate checks the configuration, returning a *errors.ConfigError naming the
// first invalid field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stdErrors.As(err, &verrs) && len(verrs) > 0 {
		return &errors.ConfigError{Err: verrs[0], Field: verrs[0].Field()}
	}
	return &errors.ConfigError{Err: err}
}

func (c Config) limits() ports.Limits {
	return ports.Limits{
		StackSize:          c.StackSize,
		MemoryLimitPages:   c.MemoryLimitPages,
		CloseOnContextDone: c.CloseOnContextDone,
	}
}
