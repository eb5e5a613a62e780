//go:build !prod

package logging

import (
	"log/slog"
	"os"
)

// Setup installs a console logger. Lines go to cfg.Console, or stdout when
// it is nil. The returned close function has nothing to release.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	out := cfg.Console
	if out == nil {
		out = os.Stdout
	}
	return install(out, cfg), func() error { return nil }, nil
}
