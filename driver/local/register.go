package local

import (
	"fmt"

	"github.com/gobeaver/diskkit"
)

func init() {
	diskkit.RegisterDriver("local", func(cfg *diskkit.Config) (diskkit.Driver, error) {
		if cfg.LocalBaseURL == "" {
			return nil, fmt.Errorf("local: base URL is required")
		}
		return New(Config{
			Root:          cfg.LocalRoot,
			BaseURL:       cfg.LocalBaseURL,
			SigningSecret: cfg.LocalSigningSecret,
		})
	})
}
